package ledger

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/mmynk/kakeibo/internal/i18n"
)

// ErrUnsupportedLanguage is returned by SetLanguage for a language without a catalog.
var ErrUnsupportedLanguage = fmt.Errorf("%w: unsupported language", ErrValidation)

// Language returns the preferred language. It works signed out, and falls
// back to the default when nothing usable is stored.
func (l *Ledger) Language(ctx context.Context) language.Tag {
	stored, err := l.session.Language(ctx)
	if err != nil {
		l.logger.Warn("Failed to read language", "error", err)
		return i18n.Default()
	}
	return i18n.Resolve(stored)
}

// SetLanguage stores the preferred language. It survives logout.
func (l *Ledger) SetLanguage(ctx context.Context, lang string) error {
	tag, ok := i18n.Parse(lang)
	if !ok {
		return ErrUnsupportedLanguage
	}
	if err := l.session.SetLanguage(ctx, tag.String()); err != nil {
		return fmt.Errorf("store language: %w", err)
	}
	return nil
}
