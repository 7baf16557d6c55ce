package httpserver

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx/v2"

	"brooklyn_demand/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TableWorkbook renders the side table as a single-sheet workbook.
func TableWorkbook(t domain.DetailTable) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(fmt.Sprintf("%dPCT", t.Scenario))
	if err != nil {
		return nil, err
	}
	header := sheet.AddRow()
	for _, c := range t.Columns {
		header.AddCell().SetString(c)
	}
	for _, row := range t.Rows {
		xr := sheet.AddRow()
		for _, v := range row {
			cell := xr.AddCell()
			switch x := v.(type) {
			case nil:
			case string:
				cell.SetString(x)
			case float64:
				cell.SetFloat(x)
			case int64:
				cell.SetInt64(x)
			case int:
				cell.SetInt(x)
			default:
				cell.SetString(fmt.Sprint(x))
			}
		}
	}
	return f, nil
}

func writeXLSX(w http.ResponseWriter, t domain.DetailTable) {
	f, err := TableWorkbook(t)
	if err != nil {
		log.Error().Err(err).Msg("build workbook failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "export failed")
		return
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		log.Error().Err(err).Msg("write workbook failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "export failed")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, t.Table))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("failed to write workbook body")
	}
}
