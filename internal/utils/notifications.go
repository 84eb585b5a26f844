package utils

import (
	"fmt"
	"log"

	"velora_back_end/internal/models"
	"velora_back_end/internal/money"
)

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande.
// Les montants sont stockés en centimes et formatés ici pour l'affichage.
func GenerateOrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s€</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s€</td>
			</tr>`,
			item.Name, item.Quantity,
			money.FormatCents(item.PriceCents),
			money.FormatCents(item.PriceCents*int64(item.Quantity)))
	}

	shippingLine := "Offerts"
	if order.ShippingCents > 0 {
		shippingLine = money.FormatCents(order.ShippingCents) + "€"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Merci pour votre commande !</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande <strong>%s</strong> a bien été payée.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
		</table>

		<table style="width: 100%%; margin: 20px 0;">
			<tr><td>Sous-total</td><td style="text-align: right;">%s€</td></tr>
			<tr><td>Livraison</td><td style="text-align: right;">%s</td></tr>
			<tr><td>TVA</td><td style="text-align: right;">%s€</td></tr>
			<tr style="font-weight: bold;"><td>Total</td><td style="text-align: right;">%s€</td></tr>
		</table>

		<h3>Adresse de livraison</h3>
		<p>%s<br>%s<br>%s %s, %s<br>%s</p>

		<p style="color: #888; font-size: 12px;">Velora — cet e-mail est envoyé automatiquement, merci de ne pas y répondre.</p>
	</div>
</body>
</html>`,
		order.ShippingName, order.OrderNumber, itemsHTML,
		money.FormatCents(order.SubtotalCents), shippingLine,
		money.FormatCents(order.TaxCents), money.FormatCents(order.TotalCents),
		order.ShippingName, order.ShippingAddress,
		order.ShippingZip, order.ShippingCity, order.ShippingState, order.ShippingCountry)
}

// SendOrderStatusEmail envoie un email de notification de changement de statut.
func SendOrderStatusEmail(order models.Order, newStatus string) error {
	subject := getStatusEmailSubject(newStatus)
	html := generateStatusEmailHTML(order, newStatus)

	if err := SendConfirmationEmail(order.ShippingEmail, subject, html, nil); err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}

	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, order.ShippingEmail)
	return nil
}

// SendShippingEmail prévient le client que sa commande est partie, avec le
// numéro de suivi si le transporteur en fournit un.
func SendShippingEmail(order models.Order, f models.Fulfillment) error {
	tracking := ""
	if f.TrackingNumber != "" {
		tracking = fmt.Sprintf(`<p>Suivi <strong>%s</strong> (%s)`, f.TrackingNumber, f.Carrier)
		if f.TrackingURL != "" {
			tracking += fmt.Sprintf(` — <a href="%s">suivre mon colis</a>`, f.TrackingURL)
		}
		tracking += "</p>"
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">📦 Votre commande est en route</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande <strong>%s</strong> a été expédiée.</p>
		%s
		<p style="color: #888; font-size: 12px;">Velora</p>
	</div>
</body>
</html>`, order.ShippingName, order.OrderNumber, tracking)

	return SendConfirmationEmail(order.ShippingEmail, "📦 Votre commande a été expédiée - Velora", html, nil)
}

func getStatusEmailSubject(status string) string {
	switch status {
	case models.OrderPaid:
		return "✅ Paiement confirmé - Velora"
	case models.OrderShipped:
		return "📦 Votre commande a été expédiée - Velora"
	case models.OrderDelivered:
		return "🎉 Votre commande a été livrée - Velora"
	case models.OrderCancelled:
		return "❌ Commande annulée - Velora"
	case models.OrderRefunded:
		return "💰 Remboursement effectué - Velora"
	default:
		return "📋 Mise à jour de votre commande - Velora"
	}
}

func generateStatusEmailHTML(order models.Order, status string) string {
	message := getStatusMessage(status)

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Mise à jour de votre commande</h2>
		<p>Bonjour %s,</p>
		<p>%s</p>
		<p>Commande <strong>%s</strong> — total %s€</p>
		<p style="color: #888; font-size: 12px;">Velora</p>
	</div>
</body>
</html>`, order.ShippingName, message, order.OrderNumber, money.FormatCents(order.TotalCents))
}

func getStatusMessage(status string) string {
	switch status {
	case models.OrderPaid:
		return "Votre paiement a bien été reçu, nous préparons votre commande."
	case models.OrderProcessing:
		return "Votre commande est en cours de préparation."
	case models.OrderShipped:
		return "Votre commande a été expédiée."
	case models.OrderDelivered:
		return "Votre commande a été livrée. Merci pour votre confiance !"
	case models.OrderCancelled:
		return "Votre commande a été annulée."
	case models.OrderRefunded:
		return "Votre remboursement a été effectué, il apparaîtra sous quelques jours sur votre compte."
	default:
		return "Le statut de votre commande a changé."
	}
}
