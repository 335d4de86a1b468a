package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrlokans/libris/internal/database"
	"github.com/mrlokans/libris/internal/database/users"
	"github.com/mrlokans/libris/internal/entities"
)

const (
	seedAdminUsername = "admin"
	seedAdminPassword = "admin123"
	seedAdminEmail    = "admin@library.com"
)

var seedAdminTags = []string{"Teacher", "Librarian"}

type sampleBook struct {
	title, author, genre, period, literatureType string
}

var sampleBooks = []sampleBook{
	{"Don Quixote", "Miguel de Cervantes", "Fiction", "17th Century", "world_czech_18"},
	{"Hamlet", "William Shakespeare", "Drama", "17th Century", "world_czech_18"},

	{"Pride and Prejudice", "Jane Austen", "Romance", "19th Century", "world_czech_19"},
	{"The Origin of Species", "Charles Darwin", "Science", "19th Century", "world_czech_19"},
	{"Wuthering Heights", "Emily Brontë", "Fiction", "19th Century", "world_czech_19"},
	{"Crime and Punishment", "Fyodor Dostoevsky", "Fiction", "19th Century", "world_czech_19"},

	{"To Kill a Mockingbird", "Harper Lee", "Fiction", "20th Century", "world_20_21"},
	{"1984", "George Orwell", "Fiction", "20th Century", "world_20_21"},
	{"The Great Gatsby", "F. Scott Fitzgerald", "Fiction", "20th Century", "world_20_21"},
	{"Dune", "Frank Herbert", "Science Fiction", "20th Century", "world_20_21"},
	{"The Hobbit", "J.R.R. Tolkien", "Fantasy", "20th Century", "world_20_21"},
	{"Brave New World", "Aldous Huxley", "Fiction", "20th Century", "world_20_21"},

	{"The Adventures of Baron Münchausen", "Rudolf Raspe", "Fiction", "20th Century", "czech_20_21"},
	{"The Good Soldier Švejk", "Jaroslav Hašek", "Fiction", "20th Century", "czech_20_21"},
	{"Metamorphosis", "Franz Kafka", "Fiction", "20th Century", "world_20_21, czech_20_21"},
	{"The Trial", "Franz Kafka", "Fiction", "20th Century", "world_20_21, czech_20_21"},
	{"Closely Watched Trains", "Bohumil Hrabal", "Fiction", "20th Century", "czech_20_21"},
	{"The Unbearable Lightness of Being", "Milan Kundera", "Fiction", "20th Century", "czech_20_21"},
}

// SeedResult reports what Seed created.
type SeedResult struct {
	AdminCreated bool
	BooksAdded   int
}

// Seed creates the default administrator and the sample catalog. With
// reset the user, book and request records are emptied first; without it
// an existing admin and books with an already used title are skipped.
func Seed(ctx context.Context, db *database.Database, reset bool, out io.Writer) (SeedResult, error) {
	var res SeedResult

	if reset {
		if err := db.Reset(ctx); err != nil {
			return res, err
		}
		fmt.Fprintln(out, "Cleared users, books and book requests")
	}

	_, err := db.Users.Create(ctx, entities.NewUser{
		Username: seedAdminUsername,
		Password: seedAdminPassword,
		Email:    seedAdminEmail,
		IsAdmin:  true,
		Tags:     seedAdminTags,
	})
	switch {
	case err == nil:
		res.AdminCreated = true
		fmt.Fprintf(out, "[+] Admin account created (username: %s, password: %s)\n", seedAdminUsername, seedAdminPassword)
	case errors.Is(err, users.ErrUserExists):
		fmt.Fprintf(out, "[=] Admin account %q already exists\n", seedAdminUsername)
	default:
		return res, fmt.Errorf("create admin: %w", err)
	}

	existing, err := db.Books.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list books: %w", err)
	}
	titles := make(map[string]bool, len(existing))
	for _, b := range existing {
		titles[b.Title] = true
	}

	for _, sb := range sampleBooks {
		if titles[sb.title] {
			continue
		}
		lt := sb.literatureType
		if _, err := db.Books.Create(ctx, entities.NewBook{
			Title:          sb.title,
			Author:         sb.author,
			Genre:          sb.genre,
			Period:         sb.period,
			LiteratureType: &lt,
		}); err != nil {
			return res, fmt.Errorf("add %q: %w", sb.title, err)
		}
		res.BooksAdded++
		fmt.Fprintf(out, "[+] Added: %s\n", sb.title)
	}

	return res, nil
}

func newSeedCommand(a *app) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin account and sample books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := Seed(cmd.Context(), db, reset, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nSeed complete: %d books added\n", res.BooksAdded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Remove existing users, books and book requests first")
	return cmd
}
