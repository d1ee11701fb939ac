package service

import (
	"fmt"
	"io"
	"time"

	"PintellAPI/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// NotificationLister is the read side of the notification engine.
type NotificationLister interface {
	GetAllNotifications() []models.Notification
}

// ReportService renders the notification log as a PDF.
type ReportService struct {
	notifications NotificationLister
	now           func() time.Time
}

func NewReportService(notifications NotificationLister) *ReportService {
	return &ReportService{notifications: notifications, now: time.Now}
}

var reportColumns = []struct {
	title string
	width float64
}{
	{"Time", 38},
	{"Device", 18},
	{"Type", 22},
	{"Threshold", 22},
	{"Status", 20},
	{"Description", 70},
}

// WritePDF writes the log, newest first, to w.
func (s *ReportService) WritePDF(w io.Writer) error {
	list := s.notifications.GetAllNotifications()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Pintell Notification Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Pintell Notification Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated %s - %d notifications", s.now().Format(time.RFC1123), len(list)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(220, 230, 241)
	for _, col := range reportColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	if len(list) == 0 {
		pdf.CellFormat(190, 7, "No notifications in the retention window.", "1", 1, "C", false, 0, "")
	}
	for _, n := range list {
		row := []string{
			n.Timestamp.Format("2006-01-02 15:04"),
			n.DeviceID,
			string(n.Type),
			n.Threshold,
			notificationStatus(n),
			truncate(n.Description, 60),
		}
		for i, col := range reportColumns {
			pdf.CellFormat(col.width, 6, row[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render notification report: %w", err)
	}
	return nil
}

func notificationStatus(n models.Notification) string {
	switch {
	case n.Unread && !n.Dismissed:
		return "new"
	case n.Unread:
		return "dismissed"
	default:
		return "read"
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
