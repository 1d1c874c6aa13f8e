package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/greenqif/pkg/models"
)

type FileType string

const (
	GreenGotJSON FileType = "greengot_json"
	GreenGotCSV  FileType = "greengot_csv"
)

// Parser turns previously exported transaction dumps into normalized
// transactions, so offline files flow through the same QIF pipeline as a
// live fetch.
type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// ProcessBytes detects the dump format and parses it.
func (p *Parser) ProcessBytes(data []byte, filename string) ([]models.Transaction, error) {
	fileType := detectType(data, filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename)

	switch fileType {
	case GreenGotJSON:
		return p.ParseJSON(data)
	case GreenGotCSV:
		return p.ParseCSV(data)
	default:
		p.logger.Debug("unknown file type", "filename", filename)
		return nil, fmt.Errorf("unknown file type")
	}
}

func detectType(data []byte, filename string) FileType {
	lowerFilename := strings.ToLower(filename)
	if strings.HasSuffix(lowerFilename, ".json") {
		return GreenGotJSON
	}
	if strings.HasSuffix(lowerFilename, ".csv") {
		return GreenGotCSV
	}
	// No usable extension: sniff. A fetch dump is a JSON array.
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return GreenGotJSON
	}
	return ""
}
