package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"garage-backend/internal/models"

	"gorm.io/gorm"
)

// CodeTTL: a code is valid for 15 minutes from creation.
const CodeTTL = 15 * time.Minute

var (
	ErrInvalidCode = errors.New("invalid OTP")
	ErrCodeExpired = errors.New("OTP expired")
)

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(to, subject, body string) error
}

// Issuer generates codes, persists them, mirrors them to the side log
// and attempts delivery with bounded retries.
type Issuer struct {
	DB         *gorm.DB
	Log        *Log
	Mailer     Mailer
	Retries    int
	RetryDelay time.Duration
}

// GenerateCode returns a uniformly random 6-digit code.
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("otp: rand failed: %v", err))
	}
	return fmt.Sprintf("%d", n.Int64()+100000)
}

// Issue creates a code for email, persists it, logs it and attempts
// delivery. A non-nil error with a non-empty code means delivery failed
// but the code exists at the data layer: the flow is recoverable through
// the OTP log.
func (i *Issuer) Issue(email, subject string) (string, error) {
	code := GenerateCode()

	if err := i.DB.Create(&models.OTP{Email: email, Code: code}).Error; err != nil {
		// keep the code recoverable even when the DB write failed
		if logErr := i.Log.Append(fmt.Sprintf("FAILED_DB_WRITE OTP for %s: %s - %v", email, code, err)); logErr != nil {
			log.Printf("otp: side log write failed: %v", logErr)
		}
		return "", err
	}

	if err := i.Log.Append(fmt.Sprintf("OTP for %s: %s", email, code)); err != nil {
		log.Printf("otp: side log write failed: %v", err)
	}

	if err := i.deliver(email, subject, code); err != nil {
		return code, err
	}
	return code, nil
}

func (i *Issuer) deliver(email, subject, code string) error {
	body := fmt.Sprintf("Your OTP is: %s", code)

	retries := i.Retries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if err := i.Mailer.Send(email, subject, body); err != nil {
			lastErr = err
			log.Printf("otp: attempt %d/%d to send to %s failed: %v", attempt, retries, email, err)
			if attempt < retries {
				time.Sleep(i.RetryDelay)
			}
			continue
		}
		return nil
	}
	log.Printf("otp: all %d attempts to send to %s failed, code remains available in %s", retries, email, i.Log.path)
	return fmt.Errorf("sending OTP failed after %d attempts: %w", retries, lastErr)
}

// Verify consumes the newest unused code matching (email, code) and
// marks any account with that email verified. The used flag flips
// exactly once, so a code cannot be replayed.
func Verify(db *gorm.DB, email, code string) error {
	var row models.OTP
	err := db.Where("email = ? AND code = ? AND used = ?", email, code, false).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	if time.Since(row.CreatedAt) > CodeTTL {
		return ErrCodeExpired
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OTP{}).Where("id = ?", row.ID).Update("used", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("email = ?", email).Update("verified", true).Error
	})
}
