package kdbx

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrabinow/kpsync/internal/common"
	"github.com/jrabinow/kpsync/internal/cryptox"
)

// File layout: magic, format version, argon2 salt, GCM nonce, ciphertext
// over the JSON-encoded group tree.
const (
	fileMagic     = "KPSX"
	formatVersion = 1
	headerSize    = len(fileMagic) + 1 + cryptox.SaltSize + cryptox.NonceSize
)

type groupDoc struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Notes   string      `json:"notes,omitempty"`
	Icon    []byte      `json:"icon,omitempty"`
	Groups  []*groupDoc `json:"groups,omitempty"`
	Entries []*entryDoc `json:"entries,omitempty"`
}

type entryDoc struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Username   *string    `json:"username,omitempty"`
	Password   *string    `json:"password,omitempty"`
	URL        *string    `json:"url,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Icon       []byte     `json:"icon,omitempty"`
	Expires    bool       `json:"expires,omitempty"`
	ExpiryTime *time.Time `json:"expiry_time,omitempty"`
	Modified   time.Time  `json:"modified"`
}

// Create initializes a new encrypted store at path, protected by password
// and an optional key file, and writes it to disk immediately.
func Create(path string, password []byte, keyfilePath string) (*Store, error) {
	s := New(path)
	s.salt = common.GenerateRandByteArray(cryptox.SaltSize)

	key, err := deriveFileKey(password, s.salt, keyfilePath)
	if err != nil {
		return nil, err
	}
	s.key = key

	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open reads and decrypts the store at path. A missing file maps to
// ErrStoreNotFound; a failed decryption (wrong password or key file) maps
// to ErrCredentials.
func Open(path string, password []byte, keyfilePath string) (*Store, error) {
	salt, nonce, ciphertext, err := readFileParts(path)
	if err != nil {
		return nil, err
	}

	key, err := deriveFileKey(password, salt, keyfilePath)
	if err != nil {
		return nil, err
	}

	return decryptStore(path, key, salt, nonce, ciphertext)
}

// OpenWithKey decrypts the store at path with an already-derived master
// key, re-reading the file from disk. This is the reload path taken after
// a handle-cache hit: the key is reused but the content never is.
func OpenWithKey(path string, key []byte) (*Store, error) {
	salt, nonce, ciphertext, err := readFileParts(path)
	if err != nil {
		return nil, err
	}
	return decryptStore(path, key, salt, nonce, ciphertext)
}

// Save serializes the tree, seals it under the store key and atomically
// replaces the file on disk.
func (s *Store) Save() error {
	if len(s.key) == 0 {
		return fmt.Errorf("store %s has no key material, cannot save", s.filename)
	}

	plaintext, err := json.Marshal(encodeGroup(s.root))
	if err != nil {
		return fmt.Errorf("encode store %s: %w", s.filename, err)
	}

	ciphertext, nonce, err := cryptox.Seal(plaintext, s.key)
	if err != nil {
		return fmt.Errorf("seal store %s: %w", s.filename, err)
	}

	buf := make([]byte, 0, headerSize+len(ciphertext))
	buf = append(buf, fileMagic...)
	buf = append(buf, formatVersion)
	buf = append(buf, s.salt...)
	buf = append(buf, nonce...)
	buf = append(buf, ciphertext...)

	dir := filepath.Dir(s.filename)
	tmp, err := os.CreateTemp(dir, ".kpsync-*")
	if err != nil {
		return fmt.Errorf("save store %s: %w", s.filename, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("save store %s: %w", s.filename, err)
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("save store %s: %w", s.filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save store %s: %w", s.filename, err)
	}

	if err := os.Rename(tmp.Name(), s.filename); err != nil {
		return fmt.Errorf("save store %s: %w", s.filename, err)
	}
	return nil
}

func deriveFileKey(password, salt []byte, keyfilePath string) ([]byte, error) {
	key := cryptox.DeriveMasterKey(password, salt)
	if keyfilePath == "" {
		return key, nil
	}
	kf, err := os.ReadFile(keyfilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: key file %s", common.ErrStoreNotFound, keyfilePath)
		}
		return nil, fmt.Errorf("read key file %s: %w", keyfilePath, err)
	}
	return cryptox.MixKeyFile(key, kf), nil
}

func readFileParts(path string) (salt, nonce, ciphertext []byte, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil, fmt.Errorf("%w: %s", common.ErrStoreNotFound, path)
		}
		return nil, nil, nil, fmt.Errorf("read store %s: %w", path, err)
	}

	if len(raw) < headerSize || string(raw[:len(fileMagic)]) != fileMagic {
		return nil, nil, nil, fmt.Errorf("store %s: not a kpsync store file", path)
	}
	if v := raw[len(fileMagic)]; v != formatVersion {
		return nil, nil, nil, fmt.Errorf("store %s: unsupported format version %d", path, v)
	}

	off := len(fileMagic) + 1
	salt = raw[off : off+cryptox.SaltSize]
	off += cryptox.SaltSize
	nonce = raw[off : off+cryptox.NonceSize]
	off += cryptox.NonceSize
	ciphertext = raw[off:]
	return salt, nonce, ciphertext, nil
}

func decryptStore(path string, key, salt, nonce, ciphertext []byte) (*Store, error) {
	plaintext, err := cryptox.Open(ciphertext, nonce, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrCredentials, path)
	}

	var doc groupDoc
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}

	return &Store{
		filename: path,
		key:      key,
		salt:     salt,
		root:     decodeGroup(&doc, nil),
	}, nil
}

func encodeGroup(g *Group) *groupDoc {
	doc := &groupDoc{
		ID:    g.id,
		Name:  g.name,
		Notes: g.notes,
		Icon:  g.icon,
	}
	for _, sub := range g.groups {
		doc.Groups = append(doc.Groups, encodeGroup(sub))
	}
	for _, e := range g.entries {
		doc.Entries = append(doc.Entries, &entryDoc{
			ID:         e.id,
			Title:      e.title,
			Username:   e.username,
			Password:   e.password,
			URL:        e.url,
			Notes:      e.notes,
			Tags:       e.tags,
			Icon:       e.icon,
			Expires:    e.expires,
			ExpiryTime: e.expiryTime,
			Modified:   e.modified,
		})
	}
	return doc
}

func decodeGroup(doc *groupDoc, parent *Group) *Group {
	g := &Group{
		id:     doc.ID,
		name:   doc.Name,
		notes:  doc.Notes,
		icon:   doc.Icon,
		parent: parent,
	}
	for _, sub := range doc.Groups {
		g.groups = append(g.groups, decodeGroup(sub, g))
	}
	for _, ed := range doc.Entries {
		g.entries = append(g.entries, &Entry{
			id:         ed.ID,
			title:      ed.Title,
			username:   ed.Username,
			password:   ed.Password,
			url:        ed.URL,
			notes:      ed.Notes,
			tags:       ed.Tags,
			icon:       ed.Icon,
			expires:    ed.Expires,
			expiryTime: ed.ExpiryTime,
			modified:   ed.Modified,
			group:      g,
		})
	}
	return g
}
