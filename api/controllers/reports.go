package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/lunaetstella/smartstock-backend/api/responses"
	"github.com/lunaetstella/smartstock-backend/internal/reports"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
)

const csvExportFilename = "inventory_report.csv"

// ReportsStats returns the dashboard counters.
func ReportsStats(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

// ReportsExportCSV streams the catalog as a CSV attachment. The report is
// buffered first so a failure mid-build still yields a JSON error body.
func ReportsExportCSV(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := svc.WriteCSV(r.Context(), &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvExportFilename))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil && logg != nil {
			logg.Error(r.Context(), "failed to stream csv export", err)
		}
	}
}
