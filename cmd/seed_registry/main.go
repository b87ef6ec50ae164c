// seed_registry carga sectores y unidades de destino desde un archivo de texto exportado
// por la planilla de las tiendas. Cada línea es "sector;Nombre" o "unidad;Nombre"; las líneas
// vacías y las que empiezan con # se ignoran. Los nombres ya registrados se omiten.
//
// Uso: go run ./cmd/seed_registry [-charset windows-1252] ruta/registro.txt
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-cd/pkg/config"
	"github.com/jhoicas/estoque-cd/pkg/logger"
)

type kind string

const (
	kindSector kind = "sector"
	kindUnit   kind = "unidad"
)

type record struct {
	kind kind
	name string
}

func main() {
	charset := flag.String("charset", "utf-8", "codificación del archivo: utf-8, iso-8859-1, windows-1252")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_registry [-charset windows-1252] ruta/registro.txt")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir archivo: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	records, err := parseRegistry(f, *charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer archivo: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	added, skipped, err := apply(ctx, postgres.NewRegistryRepository(pool), records, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("cargar registro")
	}
	log.Info().Int("added", added).Int("skipped", skipped).Msg("registro cargado")
}

func decoder(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("codificación no soportada %q", charset)
}

func parseRegistry(r io.Reader, charset string) ([]record, error) {
	in, err := decoder(r, charset)
	if err != nil {
		return nil, err
	}
	var out []record
	sc := bufio.NewScanner(in)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, name, ok := strings.Cut(line, ";")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("línea %d: se esperaba tipo;nombre", n)
		}
		switch kind(strings.ToLower(strings.TrimSpace(k))) {
		case kindSector:
			out = append(out, record{kind: kindSector, name: name})
		case kindUnit, "unit":
			out = append(out, record{kind: kindUnit, name: name})
		default:
			return nil, fmt.Errorf("línea %d: tipo desconocido %q", n, k)
		}
	}
	return out, sc.Err()
}

// apply registra cada entrada; los duplicados cuentan como omitidos.
func apply(ctx context.Context, reg repository.RegistryRepository, records []record, now time.Time) (added, skipped int, err error) {
	for _, rec := range records {
		var err error
		switch rec.kind {
		case kindSector:
			err = reg.AddSector(ctx, &entity.Sector{ID: uuid.New().String(), Name: rec.name, CreatedAt: now})
		case kindUnit:
			err = reg.AddUnit(ctx, &entity.Unit{ID: uuid.New().String(), Name: rec.name, CreatedAt: now})
		}
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		case err != nil:
			return added, skipped, fmt.Errorf("%s %q: %w", rec.kind, rec.name, err)
		default:
			added++
		}
	}
	return added, skipped, nil
}
