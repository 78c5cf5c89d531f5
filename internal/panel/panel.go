// Package panel is the live settings editor. Panel holds the editing state
// and applies every change through the instance registry; View draws it
// and turns pointer input into Panel calls.
package panel

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"slices"
	"strconv"

	"github.com/iburimskiy/backdrop/internal/palette"
	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/schema"
)

var (
	ErrNoSelection = errors.New("panel: no instance selected")
	ErrNoField     = errors.New("panel: no such field")
	// ErrCanceled is returned by Dialogs when the user dismisses a dialog.
	// Panel treats it as a no-op.
	ErrCanceled = errors.New("panel: dialog canceled")
)

// Mode selects the editor tab.
type Mode int

const (
	Controls Mode = iota
	JSON
)

func (m Mode) String() string {
	if m == JSON {
		return "JSON"
	}
	return "CONTROLS"
}

// Dialogs are the native prompts the editor needs.
type Dialogs interface {
	PickColor(title string, initial color.Color) (color.Color, error)
	Entry(title, text string) (string, error)
	OpenFile(title string, patterns ...string) (string, error)
	SaveFile(title, name string) (string, error)
}

// Row is one field with its current value, ready to render.
type Row struct {
	Field schema.Field
	Value any
	// Hex and Alpha split a color field.
	Hex   string
	Alpha float64
	// Colors holds a colorArray field.
	Colors []string
	// Text is the display form of the value.
	Text string
}

// Panel edits one registry instance at a time.
type Panel struct {
	reg      *registry.Registry
	dlg      Dialogs
	selected string
	mode     Mode
}

// New returns a panel over reg. dlg may be nil, disabling dialog edits.
func New(reg *registry.Registry, dlg Dialogs) *Panel {
	return &Panel{reg: reg, dlg: dlg}
}

// Instances lists the registered instances in registration order.
func (p *Panel) Instances() []registry.Instance { return p.reg.Instances() }

// Select chooses the instance to edit.
func (p *Panel) Select(id string) { p.selected = id }

// Selected returns the edited instance, if it is still registered.
func (p *Panel) Selected() (registry.Instance, bool) {
	if p.selected == "" {
		return registry.Instance{}, false
	}
	return p.reg.Lookup(p.selected)
}

func (p *Panel) Mode() Mode { return p.mode }

func (p *Panel) SetMode(m Mode) { p.mode = m }

// Rows returns the editable fields of the selected instance with their
// current values.
func (p *Panel) Rows() []Row {
	inst, ok := p.Selected()
	if !ok {
		return nil
	}
	flat, err := schema.ToPatch(inst.Config)
	if err != nil {
		return nil
	}
	fields := schema.Fields(inst.Kind)
	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		r := Row{Field: f, Value: flat[f.Key]}
		switch f.Control {
		case schema.ControlColor:
			s, _ := r.Value.(string)
			r.Hex, r.Alpha = palette.ParseHexAlpha(s)
			r.Text = s
		case schema.ControlColorArray:
			list, _ := r.Value.([]any)
			for _, v := range list {
				s, _ := v.(string)
				r.Colors = append(r.Colors, s)
			}
			r.Text = strconv.Itoa(len(r.Colors)) + " colors"
		case schema.ControlNumber:
			n, _ := r.Value.(float64)
			r.Text = strconv.FormatFloat(n, 'f', -1, 64)
		case schema.ControlBoolean:
			if b, _ := r.Value.(bool); b {
				r.Text = "ON"
			} else {
				r.Text = "OFF"
			}
		case schema.ControlJSON:
			data, _ := json.Marshal(r.Value)
			r.Text = string(data)
		default:
			r.Text = fmt.Sprint(r.Value)
		}
		rows = append(rows, r)
	}
	return rows
}

// field resolves key on the selected instance and returns the current
// flattened configuration alongside it.
func (p *Panel) field(key string) (schema.Field, schema.Patch, error) {
	inst, ok := p.Selected()
	if !ok {
		return schema.Field{}, nil, ErrNoSelection
	}
	f, ok := schema.Lookup(inst.Kind, key)
	if !ok {
		return f, nil, fmt.Errorf("%w: %s", ErrNoField, key)
	}
	flat, err := schema.ToPatch(inst.Config)
	if err != nil {
		return f, nil, err
	}
	return f, flat, nil
}

func (p *Panel) set(key string, v any) error {
	return p.reg.UpdateConfig(p.selected, schema.Patch{key: v})
}

// SetNumber sets a numeric field, clamped to its range and snapped to its
// step.
func (p *Panel) SetNumber(key string, v float64) error {
	f, _, err := p.field(key)
	if err != nil {
		return err
	}
	return p.set(key, Snap(f, v))
}

// Snap clamps v to the field's range and rounds it to the field's step.
func Snap(f schema.Field, v float64) float64 {
	step := f.Step
	if step <= 0 {
		step = 1
	}
	if f.Max > f.Min {
		v = math.Max(f.Min, math.Min(f.Max, v))
	}
	v = f.Min + math.Round((v-f.Min)/step)*step
	// Trim float noise from the step arithmetic.
	v, _ = strconv.ParseFloat(strconv.FormatFloat(v, 'f', 6, 64), 64)
	if f.Max > f.Min {
		v = math.Min(f.Max, v)
	}
	return v
}

// Toggle flips a boolean field.
func (p *Panel) Toggle(key string) error {
	_, cur, err := p.field(key)
	if err != nil {
		return err
	}
	b, _ := cur[key].(bool)
	return p.set(key, !b)
}

// Cycle advances a select field to its next option.
func (p *Panel) Cycle(key string) error {
	f, cur, err := p.field(key)
	if err != nil {
		return err
	}
	if len(f.Options) == 0 {
		return nil
	}
	s, _ := cur[key].(string)
	next := f.Options[(slices.Index(f.Options, s)+1)%len(f.Options)]
	return p.set(key, next)
}

// SetColor replaces the hue of a color field, keeping its alpha.
func (p *Panel) SetColor(key, hex string) error {
	_, cur, err := p.field(key)
	if err != nil {
		return err
	}
	s, _ := cur[key].(string)
	_, alpha := palette.ParseHexAlpha(s)
	v, err := palette.RGBAFromHex(hex, alpha)
	if err != nil {
		return err
	}
	return p.set(key, v)
}

// SetAlpha replaces the alpha of a color field, keeping its hue.
func (p *Panel) SetAlpha(key string, alpha float64) error {
	_, cur, err := p.field(key)
	if err != nil {
		return err
	}
	s, _ := cur[key].(string)
	hex, _ := palette.ParseHexAlpha(s)
	alpha = math.Round(math.Max(0, math.Min(1, alpha))*100) / 100
	v, err := palette.RGBAFromHex(hex, alpha)
	if err != nil {
		return err
	}
	return p.set(key, v)
}

// SetArrayColor replaces entry i of a colorArray field, keeping its alpha.
func (p *Panel) SetArrayColor(key string, i int, hex string) error {
	_, cur, err := p.field(key)
	if err != nil {
		return err
	}
	list, _ := cur[key].([]any)
	if i < 0 || i >= len(list) {
		return fmt.Errorf("%w: %s[%d]", ErrNoField, key, i)
	}
	s, _ := list[i].(string)
	_, alpha := palette.ParseHexAlpha(s)
	v, err := palette.RGBAFromHex(hex, alpha)
	if err != nil {
		return err
	}
	next := slices.Clone(list)
	next[i] = v
	return p.set(key, next)
}

// SetText sets a text field verbatim, or a JSON field from its JSON text.
func (p *Panel) SetText(key, s string) error {
	f, _, err := p.field(key)
	if err != nil {
		return err
	}
	if f.Control != schema.ControlJSON {
		return p.set(key, s)
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return fmt.Errorf("%w: %s: %v", registry.ErrInvalidJSON, key, err)
	}
	return p.set(key, v)
}

// ImportJSON merges a full or partial configuration given as JSON text.
func (p *Panel) ImportJSON(text string) error {
	if _, ok := p.Selected(); !ok {
		return ErrNoSelection
	}
	return p.reg.Import(p.selected, []byte(text))
}

// ExportJSON returns the selected configuration as indented JSON.
func (p *Panel) ExportJSON() (string, error) {
	if _, ok := p.Selected(); !ok {
		return "", ErrNoSelection
	}
	data, err := p.reg.Export(p.selected)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EditColor asks for a new color for key.
func (p *Panel) EditColor(key string) error {
	_, cur, err := p.field(key)
	if err != nil || p.dlg == nil {
		return err
	}
	s, _ := cur[key].(string)
	c, err := p.dlg.PickColor("Pick color", palette.Resolve(s, color.NRGBA{A: 255}))
	if err != nil {
		return quiet(err)
	}
	return p.SetColor(key, hexOf(c))
}

// EditArrayColor asks for a new color for entry i of key.
func (p *Panel) EditArrayColor(key string, i int) error {
	_, cur, err := p.field(key)
	if err != nil || p.dlg == nil {
		return err
	}
	list, _ := cur[key].([]any)
	if i < 0 || i >= len(list) {
		return fmt.Errorf("%w: %s[%d]", ErrNoField, key, i)
	}
	s, _ := list[i].(string)
	c, err := p.dlg.PickColor("Pick color", palette.Resolve(s, color.NRGBA{A: 255}))
	if err != nil {
		return quiet(err)
	}
	return p.SetArrayColor(key, i, hexOf(c))
}

// EditText asks for new text for a text or JSON field.
func (p *Panel) EditText(key string) error {
	f, cur, err := p.field(key)
	if err != nil || p.dlg == nil {
		return err
	}
	initial, _ := cur[key].(string)
	if f.Control == schema.ControlJSON {
		data, _ := json.Marshal(cur[key])
		initial = string(data)
	}
	s, err := p.dlg.Entry(f.Label, initial)
	if err != nil {
		return quiet(err)
	}
	return p.SetText(key, s)
}

// PasteJSON asks for configuration JSON and imports it.
func (p *Panel) PasteJSON() error {
	if p.dlg == nil {
		return nil
	}
	cur, err := p.ExportJSON()
	if err != nil {
		return err
	}
	s, err := p.dlg.Entry("Configuration JSON", cur)
	if err != nil {
		return quiet(err)
	}
	return p.ImportJSON(s)
}

// ImportFile loads configuration JSON from a file the user picks.
func (p *Panel) ImportFile() error {
	if _, ok := p.Selected(); !ok || p.dlg == nil {
		return nil
	}
	path, err := p.dlg.OpenFile("Import configuration", "*.json")
	if err != nil {
		return quiet(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	return p.reg.Import(p.selected, data)
}

// ExportFile writes the selected configuration to a file the user picks.
func (p *Panel) ExportFile() error {
	if p.dlg == nil {
		return nil
	}
	data, err := p.ExportJSON()
	if err != nil {
		return err
	}
	path, err := p.dlg.SaveFile("Export configuration", p.selected+".json")
	if err != nil {
		return quiet(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	return nil
}

func quiet(err error) error {
	if errors.Is(err, ErrCanceled) {
		return nil
	}
	return err
}

func hexOf(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
