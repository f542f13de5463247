// Package services выгружает реестр членов федерации в Excel.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/slwc/membership/internal/lib/date"
	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/models"
)

// SheetName имя единственного листа выгрузки.
const SheetName = "Iscritti SLWC"

type column struct {
	title string
	width float64
	value func(r models.SubscriberWithSchool) any
}

var columns = []column{
	{"ID", 5, func(r models.SubscriberWithSchool) any { return r.ID }},
	{"Nome", 15, func(r models.SubscriberWithSchool) any { return r.FirstName }},
	{"Cognome", 15, func(r models.SubscriberWithSchool) any { return r.LastName }},
	{"Data di Nascita", 12, func(r models.SubscriberWithSchool) any { return date.Italian(r.BirthDate) }},
	{"Luogo di Nascita", 20, func(r models.SubscriberWithSchool) any { return r.BirthPlace }},
	{"CAP Nascita", 10, func(r models.SubscriberWithSchool) any { return r.BirthCap }},
	{"Codice Fiscale", 18, func(r models.SubscriberWithSchool) any { return r.FiscalCode }},
	{"Residenza", 25, func(r models.SubscriberWithSchool) any { return r.Residence }},
	{"Comune Residenza", 20, func(r models.SubscriberWithSchool) any { return r.ResidenceCity }},
	{"CAP Residenza", 10, func(r models.SubscriberWithSchool) any { return r.ResidenceCap }},
	{"Email", 25, func(r models.SubscriberWithSchool) any { return r.Email }},
	{"Telefono", 15, func(r models.SubscriberWithSchool) any { return r.Phone }},
	{"Duan", 12, func(r models.SubscriberWithSchool) any { return DuanLabel(r.Duan) }},
	{"Tipo Documento", 15, func(r models.SubscriberWithSchool) any { return DocumentLabel(r.DocumentType) }},
	{"Numero Documento", 20, func(r models.SubscriberWithSchool) any { return deref(r.DocumentNumber) }},
	{"Scadenza Documento", 12, func(r models.SubscriberWithSchool) any { return italianPtr(r.DocumentExpiry) }},
	{"Certificato Medico", 12, func(r models.SubscriberWithSchool) any { return yesNo(r.HasMedicalCert) }},
	{"Data Iscrizione SLWC", 12, func(r models.SubscriberWithSchool) any { return date.Italian(r.SLWCJoinDate) }},
	{"Pagamento Annuale", 12, func(r models.SubscriberWithSchool) any { return yesNo(r.AnnualPayment) }},
	{"Iscritto EPS", 10, func(r models.SubscriberWithSchool) any { return yesNo(r.IsEPSMember) }},
	{"Numero Tessera EPS", 15, func(r models.SubscriberWithSchool) any { return deref(r.EPSCardNumber) }},
	{"Scuola", 20, func(r models.SubscriberWithSchool) any { return r.SchoolName }},
	{"Nome Palestra", 20, func(r models.SubscriberWithSchool) any { return deref(r.SchoolGymName) }},
	{"Indirizzo Scuola", 30, func(r models.SubscriberWithSchool) any { return deref(r.SchoolAddress) }},
	{"Data Creazione", 12, func(r models.SubscriberWithSchool) any { return date.Italian(r.CreatedAt) }},
}

// ExportRepository источник строк выгрузки.
type ExportRepository interface {
	ListSubscribersForExport(ctx context.Context) ([]models.SubscriberWithSchool, error)
}

// ExportService строит xlsx-файл реестра.
type ExportService struct {
	repo ExportRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewExportService создает новый экземпляр ExportService.
func NewExportService(repo ExportRepository, log *slog.Logger) *ExportService {
	return &ExportService{repo: repo, log: log, now: time.Now}
}

// Export возвращает содержимое книги и имя файла iscritti-slwc-YYYY-MM-DD.xlsx.
func (s *ExportService) Export(ctx context.Context) ([]byte, string, error) {
	const op = "services.export.Export"
	rows, err := s.repo.ListSubscribersForExport(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("failed to close workbook", sl.Err(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	for i, c := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		if err := f.SetColWidth(SheetName, name, name, c.width); err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		if err := f.SetCellValue(SheetName, name+"1", c.title); err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
	}

	for r, row := range rows {
		for i, c := range columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, "", fmt.Errorf("%s: %w", op, err)
			}
			if err := f.SetCellValue(SheetName, cell, c.value(row)); err != nil {
				return nil, "", fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	fileName := "iscritti-slwc-" + s.now().Format("2006-01-02") + ".xlsx"
	s.log.Info("subscribers exported", slog.Int("rows", len(rows)), slog.String("file", fileName))
	return buf.Bytes(), fileName, nil
}

// DuanLabel 1..9 обычные даны, 10..18 технические.
func DuanLabel(n int) string {
	if n > 9 {
		return strconv.Itoa(n-9) + "° Duan Tecnico"
	}
	return strconv.Itoa(n) + "° Duan"
}

// DocumentLabel расшифровывает тип документа.
func DocumentLabel(t *string) string {
	if t == nil {
		return ""
	}
	switch *t {
	case models.DocumentIdentityCard:
		return "Carta Identità"
	case models.DocumentPassport:
		return "Passaporto"
	case models.DocumentDriveLicense:
		return "Patente"
	}
	return *t
}

func yesNo(v bool) string {
	if v {
		return "Sì"
	}
	return "No"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func italianPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return date.Italian(*t)
}
