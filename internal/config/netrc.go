package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// NetrcEntry is one machine (or the default) block of a .netrc file.
type NetrcEntry struct {
	Machine  string
	Login    string
	Password string
	Account  string
}

const netrcDefault = "default"

// parseNetrc reads path into a machine -> entry map. A missing file yields a nil map.
func parseNetrc(path string) (map[string]NetrcEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("netrc: open: %w", err)
	}
	defer file.Close()

	tokens, err := netrcTokens(file)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]NetrcEntry)
	var current *NetrcEntry
	flush := func() {
		if current != nil && current.Machine != "" {
			entries[current.Machine] = *current
		}
	}

	// value returns the token after i, or "" when the file ends early.
	value := func(i int) string {
		if i+1 < len(tokens) {
			return tokens[i+1]
		}
		return ""
	}

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "machine":
			flush()
			current = &NetrcEntry{Machine: value(i)}
			i++
		case netrcDefault:
			flush()
			current = &NetrcEntry{Machine: netrcDefault}
		case "login", "password", "account":
			if current != nil {
				setNetrcField(current, tokens[i], value(i))
			}
			i++
		}
	}
	flush()

	return entries, nil
}

func setNetrcField(entry *NetrcEntry, key, val string) {
	switch key {
	case "login":
		entry.Login = val
	case "password":
		entry.Password = val
	case "account":
		entry.Account = val
	}
}

// netrcTokens splits the file into whitespace separated tokens with # comments removed.
func netrcTokens(r io.Reader) ([]string, error) {
	var tokens []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netrc: scan: %w", err)
	}

	return tokens, nil
}

// findNetrcPath honours $NETRC before falling back to ~/.netrc.
func findNetrcPath() string {
	if netrcPath := os.Getenv("NETRC"); netrcPath != "" {
		return netrcPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".netrc")
}

// loadNetrcCredentials returns the login and password stored for site's host.
// Lookup order is host:port, host, then the default entry.
func loadNetrcCredentials(site string) (login, password string, err error) {
	netrcPath := findNetrcPath()
	if netrcPath == "" {
		return "", "", nil
	}

	entries, err := parseNetrc(netrcPath)
	if err != nil || len(entries) == 0 {
		return "", "", err
	}

	hostport := site
	if parsed, perr := url.Parse(site); perr == nil && parsed.Host != "" {
		hostport = parsed.Host
	}
	host, _, splitErr := net.SplitHostPort(hostport)
	if splitErr != nil {
		host = hostport
	}

	for _, key := range []string{hostport, host, netrcDefault} {
		if entry, ok := entries[key]; ok {
			return entry.Login, entry.Password, nil
		}
	}

	return "", "", nil
}

// applyNetrcDefaults fills in email/api_token from .netrc when neither is configured.
func (c *Config) applyNetrcDefaults() error {
	if c.BaseURL == "" || c.Credential.Email != "" || c.Credential.APIToken != "" {
		return nil
	}

	login, password, err := loadNetrcCredentials(c.BaseURL)
	if err != nil {
		return fmt.Errorf("config: load netrc: %w", err)
	}
	if login != "" && password != "" {
		c.Credential.Email = login
		c.Credential.APIToken = password
	}

	return nil
}
