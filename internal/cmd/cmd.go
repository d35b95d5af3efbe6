// Package cmd implements the operations behind the maguard command-line
// flags. Interactive prompting and credential gathering live here; the web
// client itself stays prompt-free.
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/maguard-dev/maguard/internal/config"
	"github.com/maguard-dev/maguard/internal/steamweb"
	"github.com/maguard-dev/maguard/internal/storage"
	"github.com/maguard-dev/maguard/internal/util"
)

// PromptFunc reads one line of user input after printing the given label.
type PromptFunc func(label string) (string, error)

// Options carries the shared command inputs.
type Options struct {
	// AccountName selects the stored account a command operates on.
	AccountName string
	// Passkey unlocks encrypted account files. Empty means plaintext storage.
	Passkey string
	// Prompt is used for interactive input. Defaults to stdin.
	Prompt PromptFunc
}

func (o *Options) prompt() PromptFunc {
	if o != nil && o.Prompt != nil {
		return o.Prompt
	}
	return stdinPrompt
}

func stdinPrompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// newClient builds a web client from the configuration, optionally seeded
// with a previously stored session.
func newClient(cfg *config.Config, session *steamweb.Secret) *steamweb.Client {
	httpClient := &http.Client{}
	if cfg.RequestTimeoutSeconds > 0 {
		httpClient.Timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}
	httpClient = util.SetProxy(cfg, httpClient)

	return steamweb.NewClient(httpClient, steamweb.Endpoints{
		CommunityURL: cfg.CommunityURL,
		APIURL:       cfg.APIURL,
		StoreURL:     cfg.StoreURL,
	}, session)
}

// newStorage builds the account store from the configuration.
func newStorage(cfg *config.Config, opts *Options) *storage.Storage {
	passkey := ""
	if opts != nil {
		passkey = opts.Passkey
	}
	return storage.NewStorage(cfg.AuthDir, passkey)
}

// storedSession loads the serialized session of a stored account, or nil when
// the account has none.
func storedSession(store *storage.Storage, accountName string) (*steamweb.Secret, *storage.Account, error) {
	account, err := store.LoadAccount(accountName)
	if err != nil {
		return nil, nil, err
	}
	if len(account.Session) == 0 {
		return nil, account, nil
	}
	session, err := steamweb.DeserializeSession(account.Session)
	if err != nil {
		if errors.Is(err, steamweb.ErrMalformedSession) {
			return nil, nil, fmt.Errorf("stored session for %s is malformed: %w", accountName, err)
		}
		return nil, nil, err
	}
	return session, account, nil
}
