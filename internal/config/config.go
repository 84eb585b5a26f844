package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"velora_back_end/internal/money"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- Règles de prix (voir internal/pricing) ---

// FreeShippingThresholdCents : seuil de livraison gratuite (défaut 50.00).
func FreeShippingThresholdCents() int64 {
	cents, err := money.ParseCents(envOr("FREE_SHIPPING_THRESHOLD", "50.00"))
	if err != nil {
		log.Printf("⚠️ FREE_SHIPPING_THRESHOLD invalide, fallback 50.00: %v", err)
		return 5000
	}
	return cents
}

// ShippingFlatRateCents : frais de port forfaitaires (défaut 9.99).
func ShippingFlatRateCents() int64 {
	cents, err := money.ParseCents(envOr("SHIPPING_FLAT_RATE", "9.99"))
	if err != nil {
		log.Printf("⚠️ SHIPPING_FLAT_RATE invalide, fallback 9.99: %v", err)
		return 999
	}
	return cents
}

// TaxRatePercent : taux de taxe en pourcentage du sous-total (défaut 8).
func TaxRatePercent() decimal.Decimal {
	raw := envOr("TAX_RATE_PERCENT", "8")
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("⚠️ TAX_RATE_PERCENT invalide, fallback 8: %v", err)
		return decimal.NewFromInt(8)
	}
	return rate
}

// --- URLs ---

// AppBaseURL : base publique du frontend (redirections Stripe, liens emails).
func AppBaseURL() string {
	return envOr("APP_BASE_URL", "http://localhost:3000")
}

// FrontendInvoiceURL : page facture du frontend imprimée en PDF par chromedp.
func FrontendInvoiceURL() string {
	return envOr("FRONTEND_INVOICE_URL", "http://localhost:3000/invoice")
}
