// Package apitest serves an in-memory copy of the shopping-list REST API for
// tests and local development.
package apitest

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed testdata/seed.yaml
var defaultSeed []byte

// Seed is the initial backend content. Products and items reference other
// entities by id, the way the backend's request DTOs do.
type Seed struct {
	Categorias []SeedCategoria `yaml:"categorias"`
	Produtos   []SeedProduto   `yaml:"produtos"`
	Listas     []SeedLista     `yaml:"listas"`
}

type SeedCategoria struct {
	ID        int64  `yaml:"id"`
	Nome      string `yaml:"nome"`
	Descricao string `yaml:"descricao"`
}

type SeedProduto struct {
	ID        int64  `yaml:"id"`
	Nome      string `yaml:"nome"`
	Categoria int64  `yaml:"categoria"`
}

type SeedLista struct {
	ID          int64      `yaml:"id"`
	Nome        string     `yaml:"nome"`
	Usuario     int64      `yaml:"usuario"`
	DataCriacao string     `yaml:"data_criacao"`
	Itens       []SeedItem `yaml:"itens"`
}

type SeedItem struct {
	Produto    int64    `yaml:"produto"`
	Quantidade int      `yaml:"quantidade"`
	Preco      *float64 `yaml:"preco"`
	Comprado   bool     `yaml:"comprado"`
}

// DefaultSeed returns the bundled household fixture.
func DefaultSeed() Seed {
	seed, err := ParseSeed(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("apitest: bundled seed is invalid: %v", err))
	}
	return seed
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed and checks its references.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

func (s Seed) validate() error {
	categorias := make(map[int64]bool, len(s.Categorias))
	for _, c := range s.Categorias {
		if c.ID <= 0 {
			return fmt.Errorf("seed: categoria %q needs a positive id", c.Nome)
		}
		categorias[c.ID] = true
	}
	produtos := make(map[int64]bool, len(s.Produtos))
	for _, p := range s.Produtos {
		if p.ID <= 0 {
			return fmt.Errorf("seed: produto %q needs a positive id", p.Nome)
		}
		if !categorias[p.Categoria] {
			return fmt.Errorf("seed: produto %d references unknown categoria %d", p.ID, p.Categoria)
		}
		produtos[p.ID] = true
	}
	for _, l := range s.Listas {
		if l.ID <= 0 {
			return fmt.Errorf("seed: lista %q needs a positive id", l.Nome)
		}
		seen := make(map[int64]bool, len(l.Itens))
		for _, item := range l.Itens {
			if !produtos[item.Produto] {
				return fmt.Errorf("seed: lista %d references unknown produto %d", l.ID, item.Produto)
			}
			if seen[item.Produto] {
				return fmt.Errorf("seed: lista %d lists produto %d twice", l.ID, item.Produto)
			}
			seen[item.Produto] = true
		}
	}
	return nil
}
