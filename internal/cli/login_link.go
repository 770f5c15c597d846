package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/terraincognita07/miffy/internal/db"
	"github.com/terraincognita07/miffy/internal/logging"
	"github.com/terraincognita07/miffy/internal/services"
)

type LoginLinkOptions struct {
	DBPath    string
	Email     string
	SecretKey string
	SiteURL   string
	LinkTTL   time.Duration
	Logger    *logging.Logger
}

// RunLoginLinkCommand issues a one-time sign-in link without sending it, for
// operators helping a user who cannot receive mail. Any link issued earlier
// for the same account stops working.
func RunLoginLinkCommand(out io.Writer, options LoginLinkOptions) error {
	database, err := db.OpenSQLite(options.DBPath, options.Logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	auth := services.NewAuthService(db.NewUserRepository(database), services.AuthOptions{
		SecretKey: []byte(options.SecretKey),
		SiteURL:   options.SiteURL,
		LinkTTL:   options.LinkTTL,
	})
	link, user, err := auth.IssueSignInLink(options.Email)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Sign-in link for %s (user %d):\n", user.Email, user.ID)
	fmt.Fprintln(out, link)
	fmt.Fprintln(out, "The link works once and replaces any earlier link.")
	return nil
}
