// Package seed loads bornes and task templates from a YAML file. Entries are
// applied through the regular use cases, so templates reach the open
// productions of their borne like any other creation.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	catalogcmd "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/usecase/command"
	catalogquery "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/usecase/query"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	templatecmd "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/usecase/command"
	templatequery "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/usecase/query"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
)

// File is the document layout of a seed file.
type File struct {
	Bornes    []string   `yaml:"bornes"`
	Templates []Template `yaml:"templates"`
}

// Template is a seeded task template. An empty Borne makes it generic.
type Template struct {
	Label       string `yaml:"label"`
	Borne       string `yaml:"borne"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
	Active      *bool  `yaml:"active"`
}

// Parse decodes a seed document.
func Parse(data []byte) (File, error) {
	var f File
	if len(bytes.TrimSpace(data)) == 0 {
		return f, fmt.Errorf("seed: document is empty")
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("seed: decode: %w", err)
	}
	for i, t := range f.Templates {
		if strings.TrimSpace(t.Label) == "" {
			return f, fmt.Errorf("seed: template %d has no label", i)
		}
	}
	return f, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(data)
}

// Seeder applies seed files. Existing bornes (by name) and templates (by
// label within the same borne) are left as they are.
type Seeder struct {
	listBornes     *catalogquery.ListBornesHandler
	createBorne    *catalogcmd.CreateBorneHandler
	listTemplates  *templatequery.ListTemplatesHandler
	createTemplate *templatecmd.CreateTemplateHandler
}

// NewSeeder creates a new seeder
func NewSeeder(
	bornes catalog.BorneRepository,
	templates domain.Repository,
	lookup domain.CatalogLookup,
	sync domain.ProductionSync,
) *Seeder {
	return &Seeder{
		listBornes:     catalogquery.NewListBornesHandler(bornes),
		createBorne:    catalogcmd.NewCreateBorneHandler(bornes),
		listTemplates:  templatequery.NewListTemplatesHandler(templates),
		createTemplate: templatecmd.NewCreateTemplateHandler(templates, lookup, sync),
	}
}

// Result counts what a seed run created.
type Result struct {
	Bornes    int
	Templates int
}

// Apply creates the missing bornes, then the missing templates.
func (s *Seeder) Apply(ctx context.Context, f File) (Result, error) {
	var res Result

	existing, err := s.listBornes.Handle(ctx)
	if err != nil {
		return res, err
	}
	bornes := make(map[string]uint, len(existing))
	for _, b := range existing {
		bornes[b.Name] = b.ID
	}
	for _, name := range f.Bornes {
		name = strings.TrimSpace(name)
		if _, ok := bornes[name]; ok || name == "" {
			continue
		}
		b, err := s.createBorne.Handle(ctx, catalogcmd.CreateBorneCommand{Name: name})
		if err != nil {
			return res, fmt.Errorf("seed borne %q: %w", name, err)
		}
		bornes[b.Name] = b.ID
		res.Bornes++
	}

	templates, err := s.listTemplates.Handle(ctx, templatequery.ListTemplatesQuery{})
	if err != nil {
		return res, err
	}
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		seen[templateKey(t.BorneID, t.Label)] = true
	}

	for _, t := range f.Templates {
		cmd := templatecmd.CreateTemplateCommand{
			Label:  strings.TrimSpace(t.Label),
			Order:  t.Order,
			Active: t.Active,
		}
		if t.Borne != "" {
			id, ok := bornes[t.Borne]
			if !ok {
				return res, fmt.Errorf("seed template %q: unknown borne %q", t.Label, t.Borne)
			}
			cmd.BorneID = &id
		}
		if d := strings.TrimSpace(t.Description); d != "" {
			cmd.Description = &d
		}
		if seen[templateKey(cmd.BorneID, cmd.Label)] {
			continue
		}
		if _, err := s.createTemplate.Handle(ctx, cmd); err != nil {
			return res, fmt.Errorf("seed template %q: %w", t.Label, err)
		}
		seen[templateKey(cmd.BorneID, cmd.Label)] = true
		res.Templates++
	}

	logger.Info(ctx).Int("bornes", res.Bornes).Int("templates", res.Templates).Msg("Seed applied")
	return res, nil
}

func templateKey(borneID *uint, label string) string {
	if borneID == nil {
		return "generic/" + label
	}
	return fmt.Sprintf("%d/%s", *borneID, label)
}
