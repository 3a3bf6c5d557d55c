// Package wizard orquestra o cadastro completo do profissional: cada
// alteração passa pelas regras de plano antes de ser gravada, e a completude
// é recalculada depois de toda gravação bem-sucedida.
package wizard

import (
	"context"
	"errors"
	"time"

	"psiconecta/entitlement"
	"psiconecta/storage"
)

var (
	ErrProfileNotFound = errors.New("perfil não encontrado")
	ErrInvalidInput    = errors.New("dados inválidos")

	// Falhas de colaboradores: transitórias, o usuário pode tentar de novo.
	// Nunca são tratadas como violação de plano.
	ErrPersistence = errors.New("falha ao salvar o perfil")
	ErrUpload      = errors.New("falha ao enviar o arquivo")
)

// Patch é uma gravação parcial: apenas os campos listados em Fields são
// gravados, com os valores de Values. A gravação aplica tudo ou falha.
type Patch struct {
	Fields []entitlement.Field
	Values entitlement.Snapshot
}

// ProfileStore persiste o cadastro, indexado pelo id do usuário.
type ProfileStore interface {
	LoadProfile(ctx context.Context, userID int64) (entitlement.Snapshot, error)
	SaveProfile(ctx context.Context, userID int64, patch Patch) error
	// SaveAvatar grava a URL no cadastro e na conta na mesma transação.
	SaveAvatar(ctx context.Context, userID int64, url string) error
	MarkCompleteness(ctx context.Context, userID int64, c entitlement.Completeness) error
	MarkSubmitted(ctx context.Context, userID int64, at time.Time) error
}

// FileStorage envia arquivos já validados.
type FileStorage interface {
	Upload(ctx context.Context, obj storage.Object) (string, error)
}

// Navigator recebe a completude recalculada (menu "completar perfil" x "editar perfil").
type Navigator interface {
	Publish(ctx context.Context, userID int64, c entitlement.Completeness) error
}

type nopNavigator struct{}

func (nopNavigator) Publish(context.Context, int64, entitlement.Completeness) error { return nil }
