// Package contact expose le formulaire de contact public : validation du
// message puis relais par e-mail à l'adresse de la boutique.
package contact

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/utils"
)

type contactInput struct {
	Name    string `json:"name" binding:"required,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,min=5"`
	Message string `json:"message" binding:"required,min=10"`
}

type Handler struct {
	send func(to, subject, htmlBody string, pdfAttachment []byte) error
}

func NewHandler() *Handler {
	return &Handler{send: utils.SendConfirmationEmail}
}

// SubmitContactForm — POST /api/contact. Le message part vers l'adresse
// expéditrice de la boutique, avec l'e-mail du visiteur dans le corps pour
// pouvoir lui répondre.
func (h *Handler) SubmitContactForm(c *gin.Context) {
	var input contactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formulaire invalide"})
		return
	}

	to := os.Getenv("SMTP_FROM")
	if to == "" {
		to = "noreply@velora.shop"
	}

	subject := fmt.Sprintf("Formulaire de contact: %s", input.Subject)
	body := fmt.Sprintf(`
		<h2>Nouveau message du formulaire de contact</h2>
		<p><strong>De :</strong> %s (%s)</p>
		<p><strong>Sujet :</strong> %s</p>
		<p><strong>Message :</strong></p>
		<p>%s</p>
	`,
		html.EscapeString(input.Name),
		html.EscapeString(input.Email),
		html.EscapeString(input.Subject),
		html.EscapeString(input.Message),
	)

	if err := h.send(to, subject, body, nil); err != nil {
		log.Println("❌ Envoi du message de contact échoué:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Envoi du message impossible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
