package cmd

import (
	"context"
	"fmt"

	"github.com/maguard-dev/maguard/internal/config"
	log "github.com/sirupsen/logrus"
)

// DoRemove revokes the stored authenticator and deletes the account file.
// The file is only deleted once the server confirms the revocation, so a
// failed removal keeps the revocation code around for another attempt.
func DoRemove(cfg *config.Config, opts *Options) error {
	if opts == nil || opts.AccountName == "" {
		return fmt.Errorf("remove requires an account name")
	}

	store := newStorage(cfg, opts)
	session, account, err := storedSession(store, opts.AccountName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := newClient(cfg, session)
	if session == nil {
		log.Infof("no stored session for %s, logging in", opts.AccountName)
		if err = interactiveLogin(ctx, client, opts.prompt()); err != nil {
			return err
		}
	}

	resp, err := client.RemoveAuthenticator(ctx, account.RevocationCode)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("provider refused to remove the authenticator")
	}

	if err = store.RemoveAccount(opts.AccountName); err != nil {
		return err
	}
	fmt.Printf("Authenticator removed from %s\n", opts.AccountName)
	return nil
}
