package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/maguard-dev/maguard/internal/config"
	"github.com/maguard-dev/maguard/internal/steamweb"
	log "github.com/sirupsen/logrus"
)

// Environment variables the login flow reads its credentials from. The RSA
// password handshake is performed by an external collaborator; only its
// outputs are consumed here.
const (
	envUsername          = "MAGUARD_USERNAME"
	envEncryptedPassword = "MAGUARD_ENCRYPTED_PASSWORD"
	envRSATimestamp      = "MAGUARD_RSA_TIMESTAMP"
)

// gatherCredentials assembles a credential set from the environment, prompting
// for whatever is missing.
func gatherCredentials(prompt PromptFunc) (steamweb.Credentials, error) {
	creds := steamweb.Credentials{
		Username:          os.Getenv(envUsername),
		EncryptedPassword: os.Getenv(envEncryptedPassword),
		RSATimestamp:      os.Getenv(envRSATimestamp),
	}
	var err error
	if creds.Username == "" {
		if creds.Username, err = prompt("Username: "); err != nil {
			return creds, err
		}
	}
	if creds.EncryptedPassword == "" {
		if creds.EncryptedPassword, err = prompt("Encrypted password (from the RSA helper): "); err != nil {
			return creds, err
		}
	}
	if creds.RSATimestamp == "" {
		if creds.RSATimestamp, err = prompt("RSA timestamp: "); err != nil {
			return creds, err
		}
	}
	return creds, nil
}

// interactiveLogin drives the login flow, re-prompting for the second factor
// the server asks for until it either hands out credentials or the attempt
// genuinely fails. Retry on "no credentials received" is deliberately a caller
// decision, and this is the caller.
func interactiveLogin(ctx context.Context, client *steamweb.Client, prompt PromptFunc) error {
	creds, err := gatherCredentials(prompt)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		resp, errLogin := client.Login(ctx, creds)
		if errLogin == nil {
			return nil
		}
		if !errors.Is(errLogin, steamweb.ErrNoCredentials) {
			return errLogin
		}

		switch {
		case resp.RequiresTwoFactor:
			if creds.TwoFactorCode, err = prompt("Two-factor code: "); err != nil {
				return err
			}
		case resp.EmailAuthNeeded:
			if creds.EmailCode, err = prompt(fmt.Sprintf("Code sent to your %s address: ", resp.EmailDomain)); err != nil {
				return err
			}
		case resp.CaptchaNeeded:
			fmt.Printf("Captcha required: %s\n", captchaURL(client.Endpoints().CommunityURL, resp.CaptchaGID))
			creds.CaptchaGID = resp.CaptchaGID
			if creds.CaptchaText, err = prompt("Captcha text: "); err != nil {
				return err
			}
		default:
			if resp.Message != "" {
				return fmt.Errorf("login refused: %s", resp.Message)
			}
			return errLogin
		}
	}
	return fmt.Errorf("login did not produce credentials after 3 attempts")
}

// captchaURL builds the address the user must open to read the captcha,
// rooted at the configured community origin.
func captchaURL(communityURL, gid string) string {
	return communityURL + "/public/captcha.php?gid=" + gid
}

// DoLogin establishes a fresh session and, when the account is already
// stored, persists the new session material into its file.
func DoLogin(cfg *config.Config, opts *Options) error {
	client := newClient(cfg, nil)
	if err := interactiveLogin(context.Background(), client, opts.prompt()); err != nil {
		return err
	}
	fmt.Println("Login successful")

	if opts == nil || opts.AccountName == "" {
		return nil
	}

	store := newStorage(cfg, opts)
	serialized, err := client.Session().Serialize()
	if err != nil {
		return fmt.Errorf("serialize session failed: %w", err)
	}
	if err = store.UpdateSession(opts.AccountName, serialized); err != nil {
		return err
	}
	log.Infof("session for %s updated", opts.AccountName)
	return nil
}
