package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/brightsteps/institute_backend/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	config "github.com/brightsteps/institute_backend/configs"
)

type receiptRow struct {
	Label    string
	Amount   decimal.Decimal
	PaidDate string
}

// GenerateReceiptPDF renders a payment receipt for the ledger and returns the
// PDF bytes. The receipt lists the up-front payment and every collected
// installment.
func GenerateReceiptPDF(ledger *models.PaymentLedger) ([]byte, error) {
	html, err := renderReceiptHTML(ledger)
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return printToPDF(html)
}

// ArchiveReceipt uploads a generated receipt to Cloudinary and returns its
// URL, keyed by the ledger code so office staff can re-share it later.
func ArchiveReceipt(pdfBytes []byte, ledgerCode string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(pdfBytes), uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", ledgerCode, uuid.New().String()),
		Folder:       "institute_payment_receipts",
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}

func renderReceiptHTML(ledger *models.PaymentLedger) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	rows := []receiptRow{{
		Label:    "Up-front payment",
		Amount:   ledger.UpfrontPaid,
		PaidDate: ledger.CreatedAt.Format("January 2, 2006"),
	}}
	for i, slot := range ledger.Slots() {
		if slot.PaidAmount == nil {
			continue
		}
		row := receiptRow{
			Label:  fmt.Sprintf("Installment %d", i+1),
			Amount: *slot.PaidAmount,
		}
		if slot.PaidDate != nil {
			row.PaidDate = slot.PaidDate.Format("January 2, 2006")
		}
		rows = append(rows, row)
	}

	data := struct {
		LedgerCode   string
		StudentName  string
		StudentCode  string
		CourseName   string
		TotalFee     decimal.Decimal
		TotalPending decimal.Decimal
		Rows         []receiptRow
		IssuedOn     string
	}{
		LedgerCode:   ledger.Code,
		StudentName:  ledger.Student.FullName,
		StudentCode:  ledger.Student.Code,
		CourseName:   ledger.Student.Course.Name,
		TotalFee:     ledger.TotalFee,
		TotalPending: ledger.TotalPending,
		Rows:         rows,
		IssuedOn:     time.Now().Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func printToPDF(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}
