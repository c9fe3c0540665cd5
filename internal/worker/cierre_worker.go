package worker

// cierre_worker.go
// Processes closing-report jobs from QueueCierre: renders the session's
// closing report as PDF, stores its path on the session record and hands the
// delivery off to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"

	"cajacore/internal/infra"
	"cajacore/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CierreJobPayload is the job envelope sent to QueueCierre.
type CierreJobPayload struct {
	SesionID string `json:"sesion_id"`
}

type CierreWorker struct {
	sesiones        repository.SesionRepository
	dispatcher      *Dispatcher
	rdb             *redis.Client
	pdfStoragePath  string
	supervisorEmail string
}

func NewCierreWorker(
	sesiones repository.SesionRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	pdfStoragePath string,
	supervisorEmail string,
) *CierreWorker {
	return &CierreWorker{
		sesiones:        sesiones,
		dispatcher:      dispatcher,
		rdb:             rdb,
		pdfStoragePath:  pdfStoragePath,
		supervisorEmail: supervisorEmail,
	}
}

// Process renders the PDF for one closed session and enqueues its delivery.
func (w *CierreWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload CierreJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("cierre_worker: invalid payload")
		return
	}
	sesionID, err := uuid.Parse(payload.SesionID)
	if err != nil {
		log.Error().Str("sesion_id", payload.SesionID).Msg("cierre_worker: invalid sesion_id")
		return
	}

	sesion, err := w.sesiones.FindByID(ctx, sesionID)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("cierre_worker: sesión not found")
		return
	}
	if !sesion.Cerrada {
		log.Warn().Str("sesion_id", payload.SesionID).Msg("cierre_worker: sesión still open — skipping")
		return
	}

	pdfPath, err := infra.GenerateCierrePDF(sesion, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("cierre_worker: PDF generation failed")
		SendToDLQ(ctx, w.rdb, QueueCierre, "cierre", raw, "pdf: "+err.Error(), 1)
		return
	}

	sesion.URLComprobante = &pdfPath
	if err := w.sesiones.Update(ctx, sesion); err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("cierre_worker: failed to store PDF path")
	}
	log.Info().Str("pdf", pdfPath).Str("sesion_id", payload.SesionID).Msg("cierre_worker: PDF generated")

	if w.supervisorEmail == "" {
		return
	}
	fecha := sesion.FechaApertura.Format("02/01/2006")
	emailJob := EmailJobPayload{
		ToEmail: w.supervisorEmail,
		Subject: fmt.Sprintf("Cierre de caja %s — %s", sesion.Nombre, fecha),
		Body: fmt.Sprintf("Adjunto el reporte de cierre de la sesión %q a cargo de %s.",
			sesion.Nombre, sesion.Responsable),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("sesion_id", payload.SesionID).Msg("cierre_worker: failed to enqueue email")
	}
}
