package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/utils"
)

// ImportFormField is the multipart field carrying the database file.
const ImportFormField = "file"

type DatabaseController struct {
	service DatabaseService
}

func NewDatabaseController(service DatabaseService) *DatabaseController {
	return &DatabaseController{service: service}
}

// Export downloads the active store as a SQLite file
// GET /api/database/export
func (dc *DatabaseController) Export(c *gin.Context) {
	file, err := dc.service.ExportDatabase()
	if err != nil {
		respondInternalError(c, err, "export database")
		return
	}
	if file == nil {
		respondServiceError(c, diary.ErrStoreUninitialized, "export database", nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Import replaces the active store with an uploaded SQLite file
// POST /api/database/import
func (dc *DatabaseController) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxUploadSize+(1<<20))

	file, header, err := c.Request.FormFile(ImportFormField)
	if err != nil {
		respondBadRequest(c, "no file uploaded: "+ImportFormField+" field is required")
		return
	}
	defer file.Close()

	if err := utils.ValidateUpload(header.Filename, header.Header.Get("Content-Type"), header.Size); err != nil {
		respondServiceError(c, err, "import database", nil)
		return
	}

	report, err := dc.service.ImportDatabase(c.Request.Context(), io.LimitReader(file, utils.MaxUploadSize))
	if err != nil {
		respondServiceError(c, err, "import database", nil)
		return
	}

	response := gin.H{"message": "database imported"}
	if report != nil {
		response["sync"] = report
	}
	c.JSON(http.StatusOK, response)
}
