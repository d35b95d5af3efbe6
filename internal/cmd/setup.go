package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/maguard-dev/maguard/internal/config"
	"github.com/maguard-dev/maguard/internal/storage"
	"github.com/maguard-dev/maguard/internal/totp"
	log "github.com/sirupsen/logrus"
)

// DoSetup enrolls a new authenticator: login, start linking, persist the
// secrets before finalization, then confirm with the SMS code. The account
// file is written as soon as the server hands out the revocation code, so an
// interrupted finalization never strands an account without it.
func DoSetup(cfg *config.Config, opts *Options) error {
	prompt := opts.prompt()
	ctx := context.Background()

	client := newClient(cfg, nil)
	if err := interactiveLogin(ctx, client, prompt); err != nil {
		return err
	}

	hasPhone, err := client.HasPhone(ctx)
	if err != nil {
		return err
	}
	if !hasPhone {
		return fmt.Errorf("account has no phone number; add one through the provider first")
	}

	deviceID := totp.NewDeviceID()
	resp, err := client.AddAuthenticator(ctx, deviceID)
	if err != nil {
		return err
	}
	if resp.Status != 1 {
		return fmt.Errorf("add authenticator refused with status %d", resp.Status)
	}

	session := client.Session().Reveal()
	serialized, err := client.Session().Serialize()
	if err != nil {
		return fmt.Errorf("serialize session failed: %w", err)
	}
	account := &storage.Account{
		AccountName:    resp.AccountName,
		SteamID:        session.SteamID,
		SharedSecret:   resp.SharedSecret,
		IdentitySecret: resp.IdentitySecret,
		RevocationCode: resp.RevocationCode,
		SerialNumber:   resp.SerialNumber,
		TokenGID:       resp.TokenGID,
		Secret1:        resp.Secret1,
		URI:            resp.URI,
		DeviceID:       deviceID,
		Session:        serialized,
	}

	store := newStorage(cfg, opts)
	if err = store.SaveAccount(account); err != nil {
		return err
	}
	fmt.Printf("Authenticator material saved. Revocation code: %s. Write it down.\n", resp.RevocationCode)

	smsCode, err := prompt("SMS code: ")
	if err != nil {
		return err
	}

	serverTime, err := strconv.ParseUint(resp.ServerTime, 10, 64)
	if err != nil {
		return fmt.Errorf("parse server time %q failed: %w", resp.ServerTime, err)
	}
	code, err := totp.GenerateCode(resp.SharedSecret, time.Unix(int64(serverTime), 0))
	if err != nil {
		return err
	}

	final, err := client.FinalizeAuthenticator(ctx, smsCode, code, serverTime)
	if err != nil {
		return err
	}
	for final.WantMore {
		log.Debug("server wants another code before committing")
		serverTime, err = strconv.ParseUint(final.ServerTime, 10, 64)
		if err != nil {
			return fmt.Errorf("parse server time %q failed: %w", final.ServerTime, err)
		}
		serverTime += 30
		if code, err = totp.GenerateCode(resp.SharedSecret, time.Unix(int64(serverTime), 0)); err != nil {
			return err
		}
		if final, err = client.FinalizeAuthenticator(ctx, smsCode, code, serverTime); err != nil {
			return err
		}
	}
	if !final.Success {
		return fmt.Errorf("finalize authenticator failed with status %d", final.Status)
	}

	account.FullyEnrolled = true
	if err = store.SaveAccount(account); err != nil {
		return err
	}
	fmt.Println("Authenticator enrolled")
	return nil
}
