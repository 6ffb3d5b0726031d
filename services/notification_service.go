// File: /services/notification_service.go
package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jeromeleyapps-bit/flotteLPD/config"
)

// NotificationService sends the reservation emails. Sending is best effort,
// callers log failures instead of propagating them.
type NotificationService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &NotificationService{
		config: cfg,
		dialer: dialer,
	}
}

// Send reservation confirmation email
func (ns *NotificationService) SendReservationCreated(email, fullName, vehicleLabel string, start, end time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", ns.config.FromName, ns.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Flotte LPD - Réservation enregistrée")

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Réservation enregistrée</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #1d4ed8; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .details { background: #e9ecef; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🚗 Flotte LPD</h1>
            <p>Réservation enregistrée</p>
        </div>
        <div class="content">
            <h2>Bonjour %s,</h2>
            <p>Votre demande de réservation a bien été enregistrée. Elle est en attente de validation.</p>

            <div class="details">
                <p><strong>Véhicule :</strong> %s</p>
                <p><strong>Du :</strong> %s</p>
                <p><strong>Au :</strong> %s</p>
            </div>

            <p>Vous recevrez une notification dès que votre réservation sera confirmée.</p>
            <p><strong>L'équipe Flotte LPD</strong></p>
        </div>
        <div class="footer">
            <p>Ceci est un email automatique, merci de ne pas y répondre.</p>
        </div>
    </div>
</body>
</html>`, fullName, vehicleLabel, start.Format("02/01/2006 15:04"), end.Format("02/01/2006 15:04"))

	m.SetBody("text/html", htmlBody)

	if err := ns.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reservation email: %w", err)
	}
	return nil
}
