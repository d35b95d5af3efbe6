// Package storage persists enrolled accounts and their secret session
// material using the filesystem as backing storage. Each account lives in its
// own JSON file next to a manifest index; files can optionally be encrypted
// with a passkey, in which case the key-derivation parameters live in the
// manifest entry and the account file holds only ciphertext.
package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/crypto/pbkdf2"
)

const (
	manifestFileName = "manifest.json"
	manifestVersion  = 1

	pbkdf2Iterations = 100_000
	saltLength       = 16
)

// Account is the persisted record for one enrolled account: the authenticator
// material returned by enrollment plus the serialized secret session. The
// session is kept as raw JSON so its field names survive round trips through
// tools that know more fields than we do.
type Account struct {
	AccountName    string          `json:"account_name"`
	SteamID        uint64          `json:"steamid"`
	SharedSecret   string          `json:"shared_secret"`
	IdentitySecret string          `json:"identity_secret"`
	RevocationCode string          `json:"revocation_code"`
	SerialNumber   string          `json:"serial_number"`
	TokenGID       string          `json:"token_gid"`
	Secret1        string          `json:"secret_1"`
	URI            string          `json:"uri"`
	DeviceID       string          `json:"device_id"`
	FullyEnrolled  bool            `json:"fully_enrolled"`
	Session        json.RawMessage `json:"Session,omitempty"`
}

// manifestEntry indexes one account file. Salt is set only for encrypted
// files.
type manifestEntry struct {
	FileName    string `json:"filename"`
	AccountName string `json:"account_name"`
	SteamID     uint64 `json:"steamid"`
	Salt        string `json:"encryption_salt,omitempty"`
}

type manifest struct {
	Version int             `json:"version"`
	Entries []manifestEntry `json:"entries"`
}

// Storage reads and writes account files under a base directory. A non-empty
// passkey makes every save encrypt and every load expect ciphertext.
type Storage struct {
	mu      sync.Mutex
	baseDir string
	passkey string
}

// NewStorage creates a storage rooted at dir. The directory is created on
// first save.
func NewStorage(dir, passkey string) *Storage {
	return &Storage{baseDir: strings.TrimSpace(dir), passkey: passkey}
}

// SaveAccount persists an account and updates the manifest. The write is
// atomic: the file is staged under a temporary name and renamed into place.
func (s *Storage) SaveAccount(account *Account) error {
	if account == nil {
		return fmt.Errorf("storage: account is nil")
	}
	if strings.TrimSpace(account.AccountName) == "" {
		return fmt.Errorf("storage: account name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.baseDir, 0o700); err != nil {
		return fmt.Errorf("storage: create dir failed: %w", err)
	}

	raw, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal account failed: %w", err)
	}

	fileName, err := accountFileName(account.AccountName)
	if err != nil {
		return err
	}
	entry := manifestEntry{
		FileName:    fileName,
		AccountName: account.AccountName,
		SteamID:     account.SteamID,
	}

	if s.passkey != "" {
		salt := make([]byte, saltLength)
		if _, err = rand.Read(salt); err != nil {
			return fmt.Errorf("storage: generate salt failed: %w", err)
		}
		raw, err = encrypt(raw, s.passkey, salt)
		if err != nil {
			return err
		}
		entry.Salt = base64.StdEncoding.EncodeToString(salt)
	}

	log.Debugf("storage: saving account %s", account.AccountName)
	if err = writeFileAtomic(filepath.Join(s.baseDir, entry.FileName), raw); err != nil {
		return err
	}
	return s.upsertManifestEntry(entry)
}

// LoadAccount reads one account back by name.
func (s *Storage) LoadAccount(accountName string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, _, err := s.readAccountFile(accountName)
	if err != nil {
		return nil, err
	}

	var account Account
	if err = json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("storage: unmarshal account %s failed: %w", accountName, err)
	}
	return &account, nil
}

// UpdateSession replaces the stored session material of an existing account
// file in place, without disturbing fields written by other tools.
func (s *Storage) UpdateSession(accountName string, session json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, entry, err := s.readAccountFile(accountName)
	if err != nil {
		return err
	}

	raw, err = sjson.SetRawBytes(raw, "Session", session)
	if err != nil {
		return fmt.Errorf("storage: patch session failed: %w", err)
	}

	if s.passkey != "" {
		salt, errSalt := base64.StdEncoding.DecodeString(entry.Salt)
		if errSalt != nil {
			return fmt.Errorf("storage: decode salt failed: %w", errSalt)
		}
		raw, err = encrypt(raw, s.passkey, salt)
		if err != nil {
			return err
		}
	}
	return writeFileAtomic(filepath.Join(s.baseDir, entry.FileName), raw)
}

// ListAccounts returns the account names in the manifest, in manifest order.
func (s *Storage) ListAccounts() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.readManifest()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m.Entries))
	for _, entry := range m.Entries {
		names = append(names, entry.AccountName)
	}
	return names, nil
}

// RemoveAccount deletes the account file and drops its manifest entry.
func (s *Storage) RemoveAccount(accountName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.readManifest()
	if err != nil {
		return err
	}

	kept := make([]manifestEntry, 0, len(m.Entries))
	var removed *manifestEntry
	for i := range m.Entries {
		if m.Entries[i].AccountName == accountName {
			entry := m.Entries[i]
			removed = &entry
			continue
		}
		kept = append(kept, m.Entries[i])
	}
	if removed == nil {
		return fmt.Errorf("storage: account %s not found", accountName)
	}

	if err = os.Remove(filepath.Join(s.baseDir, removed.FileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete account file failed: %w", err)
	}
	m.Entries = kept
	return s.writeManifest(m)
}

func (s *Storage) readAccountFile(accountName string) ([]byte, *manifestEntry, error) {
	m, err := s.readManifest()
	if err != nil {
		return nil, nil, err
	}
	var entry *manifestEntry
	for i := range m.Entries {
		if m.Entries[i].AccountName == accountName {
			entry = &m.Entries[i]
			break
		}
	}
	if entry == nil {
		return nil, nil, fmt.Errorf("storage: account %s not found", accountName)
	}

	raw, err := os.ReadFile(filepath.Join(s.baseDir, entry.FileName))
	if err != nil {
		return nil, nil, fmt.Errorf("storage: read account file failed: %w", err)
	}

	if s.passkey != "" {
		salt, errSalt := base64.StdEncoding.DecodeString(entry.Salt)
		if errSalt != nil {
			return nil, nil, fmt.Errorf("storage: decode salt failed: %w", errSalt)
		}
		raw, err = decrypt(raw, s.passkey, salt)
		if err != nil {
			return nil, nil, err
		}
	}
	return raw, entry, nil
}

func (s *Storage) upsertManifestEntry(entry manifestEntry) error {
	m, err := s.readManifest()
	if err != nil {
		return err
	}
	replaced := false
	for i := range m.Entries {
		if m.Entries[i].AccountName == entry.AccountName {
			m.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		m.Entries = append(m.Entries, entry)
	}
	return s.writeManifest(m)
}

func (s *Storage) readManifest() (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, manifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &manifest{Version: manifestVersion}, nil
		}
		return nil, fmt.Errorf("storage: read manifest failed: %w", err)
	}

	// Tolerate manifests from older tools: take what we understand, keep going.
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("storage: manifest is not valid json")
	}
	var m manifest
	if err = json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("storage: unmarshal manifest failed: %w", err)
	}
	if m.Version == 0 {
		m.Version = manifestVersion
	}
	return &m, nil
}

func (s *Storage) writeManifest(m *manifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal manifest failed: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.baseDir, manifestFileName), raw)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("storage: write file failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("storage: rename file failed: %w", err)
	}
	return nil
}

// accountFileName derives the on-disk file name from an account name by
// dropping characters unsafe in file names. A name with no safe characters at
// all is rejected rather than collapsed to a hidden ".maguard" file.
func accountFileName(accountName string) (string, error) {
	var b strings.Builder
	for _, r := range accountName {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("storage: account name %q has no file-safe characters", accountName)
	}
	return b.String() + ".maguard", nil
}

// encrypt seals data with AES-256-GCM under a PBKDF2-derived key. The nonce
// is prepended to the ciphertext.
func encrypt(data []byte, passkey string, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(passkey, salt))
	if err != nil {
		return nil, fmt.Errorf("storage: create cipher failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("storage: create gcm failed: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("storage: generate nonce failed: %w", err)
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func decrypt(data []byte, passkey string, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(passkey, salt))
	if err != nil {
		return nil, fmt.Errorf("storage: create cipher failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("storage: create gcm failed: %w", err)
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("storage: ciphertext shorter than nonce")
	}
	plain, err := gcm.Open(nil, data[:gcm.NonceSize()], data[gcm.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("storage: decrypt failed: %w", err)
	}
	return plain, nil
}

func deriveKey(passkey string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passkey), salt, pbkdf2Iterations, 32, sha256.New)
}
