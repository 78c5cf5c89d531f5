package panel

import (
	"errors"
	"image/color"

	"github.com/ncruces/zenity"
)

// Native implements Dialogs with the desktop's own dialogs. Calls block
// until the user answers.
type Native struct{}

func (Native) PickColor(title string, initial color.Color) (color.Color, error) {
	c, err := zenity.SelectColor(zenity.Title(title), zenity.Color(initial))
	return c, canceled(err)
}

func (Native) Entry(title, text string) (string, error) {
	s, err := zenity.Entry(title, zenity.Title(title), zenity.EntryText(text))
	return s, canceled(err)
}

func (Native) OpenFile(title string, patterns ...string) (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title(title),
		zenity.FileFilters{{
			Name:     "Configuration",
			Patterns: patterns,
		}},
	)
	return path, canceled(err)
}

func (Native) SaveFile(title, name string) (string, error) {
	path, err := zenity.SelectFileSave(
		zenity.Title(title),
		zenity.Filename(name),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "Configuration",
			Patterns: []string{"*.json"},
		}},
	)
	return path, canceled(err)
}

func canceled(err error) error {
	if errors.Is(err, zenity.ErrCanceled) {
		return ErrCanceled
	}
	return err
}
