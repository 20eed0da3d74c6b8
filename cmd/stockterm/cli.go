package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jask/stockterm/internal/config"
	"github.com/jask/stockterm/internal/register"
	"github.com/jask/stockterm/internal/secrets"
	"github.com/jask/stockterm/internal/service"
)

// headless loads config and wires the runtime for a non-interactive command.
func headless(cmd *cobra.Command, verbose bool) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	var w io.Writer = io.Discard
	if verbose {
		w = cmd.ErrOrStderr()
	}
	return setup(cfg, log.New(w, "", log.LstdFlags))
}

func newListCmd(verbose *bool) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inventories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := headless(cmd, *verbose)
			if err != nil {
				return err
			}
			defer rt.Close()

			items, err := rt.client.ListInventories(cmd.Context())
			if err != nil {
				return err
			}
			items = service.FilterInventories(items, filter)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tQUANTITY")
			for _, it := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", it.ID, it.Title, it.Quantity)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only show titles matching this text")
	return cmd
}

func newShowCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			rt, err := headless(cmd, *verbose)
			if err != nil {
				return err
			}
			defer rt.Close()

			inv, err := rt.client.GetInventory(cmd.Context(), &id)
			if err != nil {
				return err
			}
			image := "-"
			if inv.ItemImage.URL != nil && *inv.ItemImage.URL != "" {
				image = *inv.ItemImage.URL
			}
			quantity := inv.Quantity
			if quantity == "" {
				quantity = "-"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:        %d\n", inv.ID)
			fmt.Fprintf(out, "Title:     %s\n", inv.Title)
			fmt.Fprintf(out, "Quantity:  %s\n", quantity)
			fmt.Fprintf(out, "Image:     %s\n", image)
			return nil
		},
	}
}

// printPresenter writes notices to the command output.
type printPresenter struct {
	w    io.Writer
	last string
}

func (p *printPresenter) Present(title, message string) {
	p.last = title
	if message == "" {
		fmt.Fprintln(p.w, title)
		return
	}
	fmt.Fprintf(p.w, "%s: %s\n", title, message)
}

func newAddCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Register a new inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := headless(cmd, *verbose)
			if err != nil {
				return err
			}
			defer rt.Close()

			presenter := &printPresenter{w: cmd.OutOrStdout()}
			flow := register.New(rt.history, presenter)
			flow.SetTitle(args[0])
			// the presenter has already printed the failure detail
			if err := flow.Submit(cmd.Context()); err != nil {
				return errors.New(register.NoticeFailed)
			}
			if presenter.last == register.NoticeInputError {
				return errors.New(register.NoticeTitleRequired)
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored API token for the configured server",
	}
	setCmd := &cobra.Command{
		Use:   "set [token]",
		Short: "Store a token (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := configuredHost()
			if err != nil {
				return err
			}
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			if err := secrets.StoreToken(host, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token stored for %s\n", host)
			return nil
		},
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := configuredHost()
			if err != nil {
				return err
			}
			if err := secrets.DeleteToken(host); err != nil {
				if errors.Is(err, secrets.ErrTokenNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "no token stored for %s\n", host)
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token removed for %s\n", host)
			return nil
		},
	}
	cmd.AddCommand(setCmd, clearCmd)
	return cmd
}

func configuredHost() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return apiHost(cfg)
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// tokens stay in the env or the token store
			cfg.API.Token = ""
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.Path())
			return nil
		},
	}
	cmd.AddCommand(initCmd)
	return cmd
}
