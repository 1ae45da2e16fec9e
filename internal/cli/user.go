package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"SIMAPRO-backend/internal/platform/auth"
	"SIMAPRO-backend/internal/platform/db"
)

// withDB は設定読み込みと DB 接続を済ませてから fn を呼ぶ
func withDB(fn func(conn *sql.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, _, done, err := bootstrap()
		if err != nil {
			return err
		}
		defer done()
		conn, err := db.Connect(cfg.DB)
		if err != nil {
			return err
		}
		defer conn.Close()
		return fn(conn)
	}
}

func newCreateUserCommand() *cobra.Command {
	var in auth.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a staff account (verified)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(conn *sql.DB) error {
				in.Verified = true
				// ログインしないので secret / ttl は使わない
				u, err := auth.NewService(auth.NewStore(conn), nil, 0).Register(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", u.ID, u.Email, u.Role)
				return nil
			})(cmd, args)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password (min 8 chars)")
	cmd.Flags().StringVar(&in.Role, "role", auth.RolePetugas, "admin | petugas | user")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
