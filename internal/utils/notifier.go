package utils

import (
	"log"

	"velora_back_end/internal/config"
	"velora_back_end/internal/models"
)

// MailNotifier implémente checkout.Notifier : e-mail de confirmation avec la
// facture PDF en pièce jointe. Si le rendu PDF échoue (Chrome absent, front
// injoignable), l'e-mail part quand même sans pièce jointe.
type MailNotifier struct{}

func NewMailNotifier() *MailNotifier {
	return &MailNotifier{}
}

func (n *MailNotifier) SendOrderConfirmation(order *models.Order) error {
	var pdf []byte

	trackingURL := config.AppBaseURL() + "/orders/" + order.ID.String()
	qr, err := GenerateTrackingQR(trackingURL)
	if err != nil {
		log.Printf("⚠️ QR de suivi non généré pour %s: %v", order.OrderNumber, err)
		qr = ""
	}

	pdf, err = RenderInvoicePDF(config.FrontendInvoiceURL(), order.ID.String(), qr)
	if err != nil {
		log.Printf("⚠️ Facture PDF non générée pour %s, envoi sans pièce jointe: %v", order.OrderNumber, err)
		pdf = nil
	}

	subject := "✅ Confirmation de votre commande " + order.OrderNumber + " - Velora"
	html := GenerateOrderConfirmationHTML(*order)
	return SendConfirmationEmail(order.ShippingEmail, subject, html, pdf)
}
