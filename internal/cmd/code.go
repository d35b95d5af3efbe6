package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/maguard-dev/maguard/internal/config"
	"github.com/maguard-dev/maguard/internal/totp"
	log "github.com/sirupsen/logrus"
)

// DoCode prints the current two-factor code for a stored account, using the
// provider's clock rather than the local one.
func DoCode(cfg *config.Config, opts *Options) error {
	if opts == nil || opts.AccountName == "" {
		return fmt.Errorf("code requires an account name")
	}

	store := newStorage(cfg, opts)
	account, err := store.LoadAccount(opts.AccountName)
	if err != nil {
		return err
	}

	client := newClient(cfg, nil)
	now := time.Now()
	timeResp, err := client.QueryTime(context.Background())
	if err != nil {
		// The provider clock is an accuracy aid, not a requirement.
		log.Warnf("query time failed, falling back to local clock: %v", err)
	} else if serverTime, errParse := strconv.ParseInt(timeResp.ServerTime, 10, 64); errParse == nil {
		now = time.Unix(serverTime, 0)
	} else {
		log.Warnf("unparsable server time %q, falling back to local clock", timeResp.ServerTime)
	}

	code, err := totp.GenerateCode(account.SharedSecret, now)
	if err != nil {
		return err
	}
	fmt.Println(code)
	return nil
}
