// Package document renders booking invoices and admin exports.
package document

import (
	"fmt"
	"io"
	"strings"
	"time"

	bookingModel "resort/internal/domains/booking/model"
	paymentModel "resort/internal/domains/payment/model"
	"resort/shared/constant"
	"resort/shared/timezone"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

const (
	ExportSheet = "Bookings"

	pageMargin = 15.0
	lineHeight = 7.0
	labelWidth = 120.0
	valueWidth = 60.0
	fontFamily = "Helvetica"
)

var policies = []string{
	"Check-in from 12:00, check-out by 11:00.",
	"Valid government photo ID is required for every adult at check-in.",
	"Cancellations within 7 days of arrival are non-refundable.",
	"Children between 5 and 10 years are charged at the child rate.",
}

var exportHeader = []any{
	"Booking ID", "Status", "Source", "Room", "Guest", "Email", "Phone",
	"Check-in", "Check-out", "Nights", "Rooms", "Adults", "Children", "Extra adults",
	"Subtotal", "Promo", "Discount", "Base", "GST %", "GST", "Amount", "Created at",
}

type Letterhead struct {
	Name    string
	SiteURL string
}

type Invoice struct {
	Letterhead Letterhead
	Booking    bookingModel.Booking
	Payments   []paymentModel.Payment
	IssuedAt   time.Time
}

// RenderInvoice writes a single page A4 invoice.
func RenderInvoice(w io.Writer, invoice Invoice) error {
	booking := invoice.Booking

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetTitle("Invoice "+booking.ID, true)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(0, 10, invoice.Letterhead.Name, "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	pdf.CellFormat(0, 5, invoice.Letterhead.SiteURL, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "B", 13)
	pdf.CellFormat(0, 8, "Booking Invoice", "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	section(pdf, "Details")
	row(pdf, "Invoice number", booking.ID)
	row(pdf, "Issued", timezone.Format(invoice.IssuedAt, constant.DisplayFormat))
	row(pdf, "Status", booking.Status)

	section(pdf, "Guest")
	row(pdf, "Name", booking.GuestName)
	row(pdf, "Email", booking.GuestEmail)
	row(pdf, "Phone", booking.GuestPhone)

	section(pdf, "Stay")
	row(pdf, "Room", booking.RoomTitle)
	row(pdf, "Check-in", timezone.Format(booking.CheckIn, constant.DisplayFormat))
	row(pdf, "Check-out", timezone.Format(booking.CheckOut, constant.DisplayFormat))
	row(pdf, "Nights", fmt.Sprint(booking.Nights))
	row(pdf, "Rooms", fmt.Sprint(booking.Rooms))
	row(pdf, "Guests", fmt.Sprintf("%d adults, %d children, %d extra adults", booking.Adults, booking.Children, booking.ExtraAdults))

	if plans := mealPlanSummary(booking.MealPlanByDate); plans != constant.Empty {
		row(pdf, "Meal plans", plans)
	}

	section(pdf, "Charges")
	row(pdf, "Subtotal", money(booking.SubtotalAmount))

	if booking.DiscountAmount > 0 {
		row(pdf, fmt.Sprintf("Promo %s", booking.PromoCode), "- "+money(booking.DiscountAmount))
	}

	row(pdf, "Taxable amount", money(booking.BaseAmount))
	row(pdf, fmt.Sprintf("GST (%.2f%%)", booking.GSTPercent), money(booking.GSTAmount))

	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(labelWidth, lineHeight+1, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, lineHeight+1, money(booking.Amount), "T", 1, "R", false, 0, "")

	if len(invoice.Payments) > 0 {
		section(pdf, "Payments")

		for _, payment := range invoice.Payments {
			label := payment.Provider + " " + payment.Status
			if payment.Method != constant.Empty {
				label += " (" + payment.Method + ")"
			}

			if payment.PaidAt != nil {
				label += " on " + timezone.Format(*payment.PaidAt, constant.DisplayFormat)
			}

			row(pdf, label, money(payment.Amount))
		}
	}

	section(pdf, "Policies")
	pdf.SetFont(fontFamily, "", 8)

	for _, policy := range policies {
		pdf.MultiCell(0, 4.5, "- "+policy, "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render invoice: %w", err)
	}

	return nil
}

// RenderExport writes an .xlsx workbook with one row per booking.
func RenderExport(w io.Writer, bookings []bookingModel.Booking) (err error) {
	file := excelize.NewFile()
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	if err = file.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err = file.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := file.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
		_ = file.SetCellStyle(ExportSheet, "A1", last, style)
	}

	for i, booking := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)

		values := []any{
			booking.ID, booking.Status, booking.Source, booking.RoomTitle,
			booking.GuestName, booking.GuestEmail, booking.GuestPhone,
			timezone.Format(booking.CheckIn, constant.DayFormat),
			timezone.Format(booking.CheckOut, constant.DayFormat),
			booking.Nights, booking.Rooms, booking.Adults, booking.Children, booking.ExtraAdults,
			booking.SubtotalAmount, booking.PromoCode, booking.DiscountAmount, booking.BaseAmount,
			booking.GSTPercent, booking.GSTAmount, booking.Amount,
			timezone.Format(booking.CreatedAt, constant.DateFormat),
		}

		if err = file.SetSheetRow(ExportSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	_ = file.SetColWidth(ExportSheet, "A", "A", 38)
	_ = file.SetColWidth(ExportSheet, "B", "V", 14)

	if err = file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(0, lineHeight, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
}

func row(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(labelWidth, lineHeight, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, lineHeight, value, "", 1, "R", false, 0, "")
}

// core fonts are latin-1 only, so no rupee sign.
func money(amount float64) string {
	return fmt.Sprintf("INR %.2f", amount)
}

func mealPlanSummary(plans bookingModel.MealPlans) string {
	counts := map[string]int{}
	order := []string{}

	for _, plan := range plans {
		if _, ok := counts[plan.Plan]; !ok {
			order = append(order, plan.Plan)
		}

		counts[plan.Plan]++
	}

	parts := make([]string, 0, len(order))
	for _, plan := range order {
		parts = append(parts, fmt.Sprintf("%s x %d", plan, counts[plan]))
	}

	return strings.Join(parts, ", ")
}
