// Package storage guarda os arquivos enviados pelo profissional (foto de
// perfil e documento do CRP) e devolve a URL pública de cada objeto.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"psiconecta/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Kind identifica o tipo de documento enviado.
type Kind string

const (
	KindAvatar      Kind = "avatar"
	KindCRPDocument Kind = "crp_document"
)

// ParseKind validates a kind coming from a route or form.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.TrimSpace(s)) {
	case KindAvatar:
		return KindAvatar, nil
	case KindCRPDocument:
		return KindCRPDocument, nil
	}
	return "", fmt.Errorf("tipo de arquivo inválido: %q", s)
}

// Rule limita tamanho e tipos aceitos de um Kind.
type Rule struct {
	Folder   string
	MaxBytes int64
	Types    []string
}

const megabyte = 1 << 20

var rules = map[Kind]Rule{
	KindAvatar: {
		Folder:   "avatars",
		MaxBytes: 2 * megabyte,
		Types:    []string{"image/jpeg", "image/png", "image/webp"},
	},
	KindCRPDocument: {
		Folder:   "crp-documents",
		MaxBytes: 5 * megabyte,
		Types:    []string{"image/jpeg", "image/png", "image/webp", "application/pdf"},
	},
}

// RuleFor returns the upload rule for kind.
func RuleFor(kind Kind) (Rule, bool) {
	r, ok := rules[kind]
	return r, ok
}

var (
	ErrEmptyFile       = errors.New("arquivo vazio")
	ErrTooLarge        = errors.New("arquivo excede o tamanho máximo")
	ErrUnsupportedType = errors.New("tipo de arquivo não permitido")
)

// Object é um arquivo já validado, pronto para envio.
type Object struct {
	Kind        Kind
	UserID      int64
	Data        []byte
	ContentType string
	Extension   string
}

// Key is the object path inside the bucket: <folder>/<userID>/<uuid><ext>.
func (o Object) Key() string {
	folder := string(o.Kind)
	if r, ok := rules[o.Kind]; ok {
		folder = r.Folder
	}
	return fmt.Sprintf("%s/%d/%s%s", folder, o.UserID, uuid.NewString(), o.Extension)
}

// Prepare checks size and sniffed content type against the rule for kind.
// The declared content type from the client is ignored; the bytes decide.
func Prepare(kind Kind, userID int64, data []byte) (Object, error) {
	rule, ok := rules[kind]
	if !ok {
		return Object{}, fmt.Errorf("tipo de arquivo inválido: %q", kind)
	}
	if len(data) == 0 {
		return Object{}, ErrEmptyFile
	}
	if int64(len(data)) > rule.MaxBytes {
		return Object{}, fmt.Errorf("%w: %d bytes, máximo %d", ErrTooLarge, len(data), rule.MaxBytes)
	}

	mtype := mimetype.Detect(data)
	for _, t := range rule.Types {
		if mtype.Is(t) {
			return Object{
				Kind:        kind,
				UserID:      userID,
				Data:        data,
				ContentType: t,
				Extension:   mtype.Extension(),
			}, nil
		}
	}
	return Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
}

// Uploader envia um objeto e devolve a URL pública.
type Uploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// New picks the driver configured in cfg ("local" or "s3").
func New(ctx context.Context, cfg config.StorageConfig) (Uploader, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL), nil
	case "s3":
		return NewS3(ctx, cfg)
	}
	return nil, fmt.Errorf("storage driver desconhecido: %q", cfg.Driver)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
