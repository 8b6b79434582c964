package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

const sqliteHeader = "SQLite format 3\x00"

// Export serializes the whole database into the standard SQLite file format.
func (s *Store) Export() ([]byte, error) {
	var data []byte
	err := s.withDriverConn(func(c *sqlite3.SQLiteConn) error {
		b, err := c.Serialize("main")
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export store: %w", err)
	}
	return data, nil
}

// Restore builds a new in-memory store from bytes produced by Export or by
// any SQLite client. The snapshot's schema is taken as is; call CreateTables
// to fill in missing tables.
func Restore(data []byte) (*Store, error) {
	pageSize := snapshotPageSize(data)
	if pageSize == 0 {
		return nil, fmt.Errorf("%w: missing SQLite header", ErrInvalidSnapshot)
	}

	// Deserialized databases cannot grow, so the bytes are loaded into a
	// scratch connection and copied into a regular one with the backup API.
	scratch, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open scratch database: %w", err)
	}
	defer scratch.Close()
	scratch.SetMaxOpenConns(1)

	dst, err := openDSN(memoryDSN, "")
	if err != nil {
		return nil, err
	}

	// An in-memory backup target must share the source page size.
	if err := dst.db.Exec(fmt.Sprintf("PRAGMA page_size = %d", pageSize)).Error; err != nil {
		dst.Close()
		return nil, fmt.Errorf("failed to set page size: %w", err)
	}

	ctx := context.Background()
	srcConn, err := scratch.Conn(ctx)
	if err != nil {
		dst.Close()
		return nil, fmt.Errorf("failed to open scratch connection: %w", err)
	}
	defer srcConn.Close()

	err = srcConn.Raw(func(driverConn any) error {
		src, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		if err := src.Deserialize(data, "main"); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		return dst.withDriverConn(func(d *sqlite3.SQLiteConn) error {
			return copyDatabase(d, src)
		})
	})
	if err != nil {
		dst.Close()
		return nil, err
	}

	if _, err := dst.Tables(); err != nil {
		dst.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return dst, nil
}

// snapshotPageSize reads the page size from a SQLite file header, or 0 when
// the header is absent.
func snapshotPageSize(data []byte) int {
	if len(data) < 100 || string(data[:16]) != sqliteHeader {
		return 0
	}
	size := int(binary.BigEndian.Uint16(data[16:18]))
	if size == 1 {
		return 65536
	}
	return size
}

func copyDatabase(dst, src *sqlite3.SQLiteConn) error {
	backup, err := dst.Backup("main", src, "main")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if _, err := backup.Step(-1); err != nil {
		backup.Finish()
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := backup.Finish(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return nil
}

// withDriverConn runs fn on the store's single pooled connection.
func (s *Store) withDriverConn(fn func(*sqlite3.SQLiteConn) error) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	conn, err := sqlDB.Conn(context.Background())
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		return fn(c)
	})
}
