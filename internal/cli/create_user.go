package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrlokans/libris/internal/entities"
)

var errPasswordMismatch = errors.New("passwords do not match")

// readPassword reads a password without echo when stdin is a terminal,
// otherwise it takes the first line of input.
func readPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newCreateUserCommand(a *app) *cobra.Command {
	var (
		username string
		email    string
		admin    bool
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account, prompting for the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := cmd.InOrStdin(), cmd.OutOrStdout()
			if strings.TrimSpace(username) == "" {
				return errors.New("username must not be empty")
			}

			password, err := readPassword(in, out, "Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if password == "" {
				return errors.New("password must not be empty")
			}
			if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				confirm, err := readPassword(in, out, "Confirm password: ")
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				if confirm != password {
					return errPasswordMismatch
				}
			}

			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := db.Users.Create(cmd.Context(), entities.NewUser{
				Username: strings.TrimSpace(username),
				Password: password,
				Email:    strings.TrimSpace(email),
				IsAdmin:  admin,
				Tags:     tags,
			})
			if err != nil {
				return err
			}

			role := "user"
			if user.IsAdmin {
				role = "admin"
			}
			fmt.Fprintf(out, "Created %s %q (id %d)\n", role, user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address (required)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant administrator rights")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated user tags, e.g. Student,Parent")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
