package excel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gokundoluk/internal"
	"gokundoluk/ports"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize puts in a new workbook
const defaultSheet = "Sheet1"

// Store opens report workbooks from disk
type Store struct {
	config Config
	logger *internal.Logger
}

var _ ports.WorkbookStorePort = (*Store)(nil)

// NewStore creates a workbook store
func NewStore(config Config, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Store{config: config.withDefaults(), logger: logger}
}

// Open loads the workbook at path, or starts an empty one when the file does
// not exist yet
func (s *Store) Open(path string) (ports.WorkbookPort, error) {
	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("Starting new workbook for %s", path)
		return newWorkbook(excelize.NewFile(), s.config, defaultSheet), nil
	case err != nil:
		return nil, fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	s.logger.Debug("Opened workbook %s", path)
	return newWorkbook(file, s.config, ""), nil
}
