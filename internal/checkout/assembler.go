package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
	"velora_back_end/internal/pricing"
)

// Assembler transforme un panier chiffré en commande persistée PENDING,
// avec snapshots de lignes figés.
type Assembler struct {
	orders OrderStore
}

func NewAssembler(orders OrderStore) *Assembler {
	return &Assembler{orders: orders}
}

// Assemble valide la saisie de livraison, fige les lignes du chiffrage et
// écrit commande + lignes atomiquement. La commande naît en PENDING.
func (a *Assembler) Assemble(ctx context.Context, userID string, quote *pricing.Quote, info models.ShippingInfo) (*models.Order, error) {
	if len(quote.Lines) == 0 {
		return nil, fmt.Errorf("%w: panier vide", models.ErrValidation)
	}
	if err := validateShippingInfo(info); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		ID:          gocql.TimeUUID(),
		OrderNumber: generateOrderNumber(),
		UserID:      userID,
		Status:      models.OrderPending,

		SubtotalCents: quote.SubtotalCents,
		ShippingCents: quote.ShippingCents,
		TaxCents:      quote.TaxCents,
		TotalCents:    quote.TotalCents,

		ShippingName:    info.Name,
		ShippingEmail:   info.Email,
		ShippingPhone:   info.Phone,
		ShippingAddress: info.Address,
		ShippingCity:    info.City,
		ShippingState:   info.State,
		ShippingZip:     info.Zip,
		ShippingCountry: info.Country,

		CreatedAt: now,
		UpdatedAt: now,
		Items:     quote.Lines,
	}

	if err := a.orders.CreateWithItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func validateShippingInfo(info models.ShippingInfo) error {
	// Le téléphone est le seul champ optionnel.
	required := map[string]string{
		"name":    info.Name,
		"email":   info.Email,
		"address": info.Address,
		"city":    info.City,
		"state":   info.State,
		"zip":     info.Zip,
		"country": info.Country,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: champ livraison manquant: %s", models.ErrValidation, field)
		}
	}
	return nil
}

// generateOrderNumber : VL-<millis en base36>-<4 octets aléatoires>.
// La clé primaire reste l'UUID de commande ; le numéro ne sert qu'à
// l'affichage et au support, une collision exigerait deux commandes la même
// milliseconde avec les mêmes 32 bits aléatoires.
func generateOrderNumber() string {
	var suffix [4]byte
	_, _ = rand.Read(suffix[:])
	millis := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return fmt.Sprintf("VL-%s-%X", millis, suffix[:])
}
