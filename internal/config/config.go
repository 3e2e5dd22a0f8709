package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/FranLegon/cloud-drives-search/internal/crypto"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/manifoldco/promptui"
)

const (
	// configFile is the name of the encrypted configuration file.
	configFile = "config.json.enc"
)

var (
	// ErrNotInitialized is returned when the salt or config file is missing.
	ErrNotInitialized = errors.New("not initialized, please run the 'init' command first")
	// ErrWrongPassword is returned when the config cannot be decrypted.
	ErrWrongPassword = errors.New("failed to decrypt config: master password may be incorrect")
	// ErrNoAccounts is returned when no account matches a selection.
	ErrNoAccounts = errors.New("no matching account configured, run 'add-account' first")
)

// AppConfig is serialized to and from the encrypted config file. It holds
// the OAuth client credentials and every added account.
type AppConfig struct {
	GoogleClient    ClientCredentials `json:"google_client"`
	MicrosoftClient ClientCredentials `json:"microsoft_client"`
	Users           []model.User      `json:"users"`
}

// ClientCredentials holds the OAuth 2.0 client ID and secret for a cloud provider's API.
type ClientCredentials struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

// Client returns the credentials for provider.
func (c *AppConfig) Client(provider model.Provider) (ClientCredentials, error) {
	var creds ClientCredentials
	switch provider {
	case model.ProviderGoogle:
		creds = c.GoogleClient
	case model.ProviderMicrosoft:
		creds = c.MicrosoftClient
	default:
		return creds, fmt.Errorf("unsupported provider: %s", provider)
	}
	if creds.ID == "" {
		return creds, fmt.Errorf("no %s client credentials configured", provider)
	}
	return creds, nil
}

// AddUser records an account, replacing the refresh token of an existing
// one. The first account added becomes the main account.
func (c *AppConfig) AddUser(u model.User) {
	for i := range c.Users {
		if c.Users[i].Provider == u.Provider && strings.EqualFold(c.Users[i].Email, u.Email) {
			c.Users[i].RefreshToken = u.RefreshToken
			return
		}
	}
	u.IsMain = len(c.Users) == 0
	c.Users = append(c.Users, u)
}

// SelectUser finds the account whose email matches selector, or the main
// account when selector is empty.
func (c *AppConfig) SelectUser(selector string) (model.User, error) {
	selector = strings.TrimSpace(selector)
	for _, u := range c.Users {
		if selector == "" && u.IsMain {
			return u, nil
		}
		if selector != "" && strings.EqualFold(u.Email, selector) {
			return u, nil
		}
	}
	if selector == "" && len(c.Users) > 0 {
		return c.Users[0], nil
	}
	return model.User{}, ErrNoAccounts
}

// Store reads and writes the encrypted config inside Dir.
type Store struct {
	Dir string
}

func (s Store) saltPath() string   { return filepath.Join(s.Dir, crypto.SaltFileName) }
func (s Store) configPath() string { return filepath.Join(s.Dir, configFile) }

// Exists reports whether an encrypted config is present.
func (s Store) Exists() bool {
	_, err := os.Stat(s.configPath())
	return err == nil
}

// Init creates a new salt and writes cfg encrypted with masterPassword.
func (s Store) Init(masterPassword string, cfg *AppConfig) error {
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if _, err := crypto.GenerateAndSaveSalt(s.saltPath()); err != nil {
		return err
	}
	return s.Save(masterPassword, cfg)
}

// Load decrypts and loads the application configuration.
func (s Store) Load(masterPassword string) (*AppConfig, error) {
	sealer, err := s.sealer(masterPassword)
	if err != nil {
		return nil, err
	}

	ciphertext, err := os.ReadFile(s.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	if err := sealer.Open(ciphertext, &cfg); err != nil {
		return nil, ErrWrongPassword
	}
	return &cfg, nil
}

// Save encrypts cfg and writes it with owner-only permissions.
func (s Store) Save(masterPassword string, cfg *AppConfig) error {
	sealer, err := s.sealer(masterPassword)
	if err != nil {
		return err
	}
	ciphertext, err := sealer.Seal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encrypt config for saving: %w", err)
	}
	return os.WriteFile(s.configPath(), ciphertext, 0600)
}

func (s Store) sealer(masterPassword string) (*crypto.Sealer, error) {
	salt, err := crypto.LoadSalt(s.saltPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}
	return crypto.NewSealer(crypto.DeriveKey(masterPassword, salt))
}

func validatePassword(input string) error {
	if len(input) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	return nil
}

// GetMasterPassword prompts for the master password without echoing it.
func GetMasterPassword(confirm bool) (string, error) {
	prompt := promptui.Prompt{
		Label:    "Enter Master Password",
		Mask:     '*',
		Validate: validatePassword,
	}
	password, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if !confirm {
		return password, nil
	}

	confirmPrompt := promptui.Prompt{
		Label:    "Confirm Master Password",
		Mask:     '*',
		Validate: validatePassword,
	}
	confirmation, err := confirmPrompt.Run()
	if err != nil {
		return "", err
	}
	if password != confirmation {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

// PromptString asks for a single line of input.
func PromptString(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("value cannot be empty")
			}
			return nil
		},
	}
	value, err := prompt.Run()
	return strings.TrimSpace(value), err
}

// SelectProvider asks which cloud provider an account belongs to.
func SelectProvider() (model.Provider, error) {
	sel := promptui.Select{
		Label: "Select Provider",
		Items: []model.Provider{model.ProviderGoogle, model.ProviderMicrosoft},
	}
	_, choice, err := sel.Run()
	if err != nil {
		return "", err
	}
	return model.Provider(choice), nil
}
