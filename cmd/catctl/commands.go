package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"cat-shelter/internal/domain/browse"
	"cat-shelter/internal/domain/cats"
	"cat-shelter/internal/domain/search"
	"cat-shelter/internal/platform/httpclient"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// errStop corta un stream desde el callback sin que cuente como falla.
	errStop = errors.New("stop")

	errStreamClosed = errors.New("stream closed by server")
)

type filterFlags struct {
	breed    string
	gender   string
	ageRange string
	distance int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.breed, "breed", search.Any, "raza o Any")
	cmd.Flags().StringVar(&f.gender, "gender", search.Any, "MALE, FEMALE o Any")
	cmd.Flags().StringVar(&f.ageRange, "age-range", search.Any, `"0-1 year", "1-2 years", "2-5 years", "Over 5 years" o Any`)
	cmd.Flags().IntVar(&f.distance, "distance", search.DefaultDistance, "millas (no filtra)")
}

func (f *filterFlags) criteria() search.Criteria {
	return search.Criteria{
		Breed:    f.breed,
		Gender:   f.gender,
		AgeRange: f.ageRange,
		Distance: f.distance,
	}
}

func (a *app) optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Valores posibles de los filtros",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out search.OptionsResponse
			if err := a.client.DoJSON(cmd.Context(), http.MethodGet, "/options", nil, nil, &out); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "breeds:     %s\n", strings.Join(out.Breeds, ", "))
			fmt.Fprintf(w, "genders:    %s\n", strings.Join(out.Genders, ", "))
			fmt.Fprintf(w, "age ranges: %s\n", strings.Join(out.AgeRanges, ", "))
			fmt.Fprintf(w, "distance:   %d (default)\n", out.DefaultDistance)
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Buscar gatos por raza, sexo y edad",
		Example: `  catctl list --age-range "1-2 years"
  catctl list --breed Moggie --gender female`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := f.criteria()
			q := url.Values{}
			q.Set("breed", c.Breed)
			q.Set("gender", c.Gender)
			q.Set("age_range", c.AgeRange)
			q.Set("distance", strconv.Itoa(c.Distance))

			var out struct {
				Query search.Descriptor `json:"query"`
				Cats  []cats.Response   `json:"cats"`
			}
			if err := a.client.DoJSON(cmd.Context(), http.MethodGet, "/cats?"+q.Encode(), nil, nil, &out); err != nil {
				return err
			}
			a.logger.Debug("search", zap.String("kind", string(out.Query.Kind)), zap.Int("results", len(out.Cats)))
			fmt.Fprintf(cmd.OutOrStdout(), "query: %s\n", out.Query.Kind)
			return printCats(cmd.OutOrStdout(), out.Cats)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) recentCmd() *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Ingresos de los últimos 30 días",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if follow {
				return a.follow(cmd.Context(), cmd.OutOrStdout(), "/cats/recent/stream", false)
			}
			var out []cats.Response
			if err := a.client.DoJSON(cmd.Context(), http.MethodGet, "/cats/recent", nil, nil, &out); err != nil {
				return err
			}
			return printCats(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "seguir el feed en vivo (SSE)")
	return cmd
}

func (a *app) featuredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "Un gato destacado entre los ingresos recientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out struct {
				Cat cats.Response `json:"cat"`
			}
			err := a.client.DoJSON(cmd.Context(), http.MethodGet, "/cats/featured", nil, nil, &out)
			var httpErr *httpclient.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
				fmt.Fprintln(cmd.OutOrStdout(), "no recent cats")
				return nil
			}
			if err != nil {
				return err
			}
			return printCats(cmd.OutOrStdout(), []cats.Response{out.Cat})
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var (
		name, gender, breed, desc, dob string
		imagePath, photo               string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Registrar un gato",
		Long: `Registra un gato. La foto se sube con --photo o se referencia con --image-path.
Sin nombre o sin foto el servidor no crea nada.`,
		Example: `  catctl add --name Tibs --gender MALE --breed Moggie --dob 2023-04-01 --photo tibs.png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := map[string]string{
				"name":        name,
				"gender":      gender,
				"breed":       breed,
				"description": desc,
				"dob":         dob,
				"image_path":  imagePath,
			}

			var (
				out cats.Response
				err error
			)
			if photo != "" {
				f, openErr := os.Open(photo)
				if openErr != nil {
					return fmt.Errorf("open photo: %w", openErr)
				}
				defer f.Close()
				err = a.client.PostMultipart(cmd.Context(), "/cats", fields, "photo", filepath.Base(photo), f, &out)
			} else {
				err = a.client.DoJSON(cmd.Context(), http.MethodPost, "/cats", nil, fields, &out)
			}
			if err != nil {
				return err
			}

			// 204: el servidor descartó el alta
			if out.ID == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing admitted (name and photo are required)")
				return nil
			}
			return printCats(cmd.OutOrStdout(), []cats.Response{out})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "nombre")
	cmd.Flags().StringVar(&gender, "gender", "", "MALE o FEMALE")
	cmd.Flags().StringVar(&breed, "breed", "", "raza")
	cmd.Flags().StringVar(&desc, "description", "", "descripción")
	cmd.Flags().StringVar(&dob, "dob", "", "fecha de nacimiento YYYY-MM-DD (default hoy)")
	cmd.Flags().StringVar(&imagePath, "image-path", "", "imagen ya existente")
	cmd.Flags().StringVar(&photo, "photo", "", "archivo de foto a subir")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var (
		f    filterFlags
		once bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Abrir una sesión de navegación y seguir sus resultados",
		Long: `Abre una sesión, aplica el filtro y muestra la lista cada vez que cambia
(altas nuevas que encajan con el filtro). La sesión se cierra al salir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var sess browse.View
			if err := a.client.DoJSON(ctx, http.MethodPost, "/sessions", nil, nil, &sess); err != nil {
				return err
			}
			defer a.closeSession(sess.ID)

			var upd struct {
				Changed bool        `json:"changed"`
				Session browse.View `json:"session"`
			}
			if err := a.client.DoJSON(ctx, http.MethodPut, "/sessions/"+sess.ID+"/criteria", nil, f.criteria(), &upd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s: %s\n", sess.ID, upd.Session.Query.Kind)

			return a.follow(ctx, cmd.OutOrStdout(), "/sessions/"+sess.ID+"/stream", once)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&once, "once", false, "salir después del primer resultado")
	return cmd
}

func (a *app) follow(ctx context.Context, w io.Writer, path string, once bool) error {
	err := a.client.Stream(ctx, path, func(ev httpclient.Event) error {
		switch ev.Name {
		case "cats":
			var items []cats.Response
			if err := json.Unmarshal(ev.Data, &items); err != nil {
				return fmt.Errorf("decode event: %w", err)
			}
			fmt.Fprintf(w, "--- %s (%d)\n", time.Now().Format(time.TimeOnly), len(items))
			if err := printCats(w, items); err != nil {
				return err
			}
		case "error":
			a.logger.Warn("server reported stream error", zap.ByteString("data", ev.Data))
		case "closed":
			// la sesión venció o la cerró otro cliente
			return errStreamClosed
		}
		if once {
			return errStop
		}
		return nil
	})
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func (a *app) closeSession(id string) {
	// ctx del comando puede estar cancelado (Ctrl-C)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.client.DoJSON(ctx, http.MethodDelete, "/sessions/"+id, nil, nil, nil); err != nil {
		a.logger.Warn("close session failed", zap.String("session_id", id), zap.Error(err))
	}
}

func printCats(w io.Writer, items []cats.Response) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGENDER\tBREED\tDOB\tADMITTED\tKITTEN")
	for _, c := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%t\n",
			c.ID, c.Name, c.Gender, c.Breed,
			c.DOB.Format(time.DateOnly), c.AdmittedAt.Format(time.DateOnly), c.Kitten)
	}
	return tw.Flush()
}
