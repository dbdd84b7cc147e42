package cli

import (
	"github.com/spf13/cobra"
)

func newRegisterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register EMAIL PASSWORD",
		Short: "Crea una cuenta e inicia sesión",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session.Register(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			email := ""
			if user.Email != nil {
				email = *user.Email
			}
			printf(cmd.OutOrStdout(), "Cuenta creada para %s\n", email)
			return nil
		},
	}
}

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login EMAIL PASSWORD",
		Short: "Inicia sesión y guarda el token en este equipo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Login(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Sesión iniciada\n")
			return nil
		},
	}
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Sesión cerrada\n")
			return nil
		},
	}
}

func newAccountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Gestiona tu cuenta",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete EMAIL",
		Short: "Elimina el email de tu cuenta y cierra la sesión",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.DeleteAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Tu email ha sido eliminado correctamente\n")
			return nil
		},
	})

	return cmd
}
