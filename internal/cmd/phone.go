package cmd

import (
	"context"
	"fmt"

	"github.com/maguard-dev/maguard/internal/config"
	"github.com/maguard-dev/maguard/internal/steamweb"
	log "github.com/sirupsen/logrus"
)

// DoCheckPhone reports whether the account behind the stored session has a
// phone number attached.
func DoCheckPhone(cfg *config.Config, opts *Options) error {
	client, err := authenticatedClient(cfg, opts)
	if err != nil {
		return err
	}

	hasPhone, err := client.HasPhone(context.Background())
	if err != nil {
		return err
	}
	if hasPhone {
		fmt.Println("A phone number is present on the account")
	} else {
		fmt.Println("No phone number on the account")
	}
	return nil
}

// DoValidatePhone asks the provider to describe a phone number.
func DoValidatePhone(cfg *config.Config, opts *Options, phoneNumber string) error {
	client, err := authenticatedClient(cfg, opts)
	if err != nil {
		return err
	}

	resp, err := client.ValidatePhone(context.Background(), phoneNumber)
	if err != nil {
		return err
	}
	fmt.Printf("number=%s valid=%v voip=%v fixed=%v\n", resp.Number, resp.IsValid, resp.IsVOIP, resp.IsFixed)
	return nil
}

// authenticatedClient returns a client holding a session: the stored one when
// an account is named and has one, an interactive login otherwise.
func authenticatedClient(cfg *config.Config, opts *Options) (*steamweb.Client, error) {
	ctx := context.Background()
	if opts != nil && opts.AccountName != "" {
		store := newStorage(cfg, opts)
		session, _, err := storedSession(store, opts.AccountName)
		if err != nil {
			return nil, err
		}
		if session != nil {
			return newClient(cfg, session), nil
		}
		log.Infof("no stored session for %s, logging in", opts.AccountName)
	}

	client := newClient(cfg, nil)
	if err := interactiveLogin(ctx, client, opts.prompt()); err != nil {
		return nil, err
	}
	return client, nil
}
