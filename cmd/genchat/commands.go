package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/bububa/genchat"
	"github.com/bububa/genchat/encoding"
	jsonenc "github.com/bububa/genchat/encoding/json"
)

// mediaFlags collects --image and --file in command line order.
type mediaFlags struct {
	items []mediaArg
}

type mediaArg struct {
	kind genchat.Kind
	path string
}

// mediaValue appends one kind of attachment to the shared list.
type mediaValue struct {
	kind  genchat.Kind
	flags *mediaFlags
}

func (v mediaValue) String() string {
	var paths []string
	for _, item := range v.flags.items {
		if item.kind == v.kind {
			paths = append(paths, item.path)
		}
	}
	return strings.Join(paths, ",")
}

func (v mediaValue) Set(path string) error {
	v.flags.items = append(v.flags.items, mediaArg{kind: v.kind, path: path})
	return nil
}

func (v mediaValue) Type() string {
	return "path"
}

func (m *mediaFlags) register(cmd *cobra.Command) {
	cmd.Flags().Var(mediaValue{kind: genchat.KindImage, flags: m}, "image", "image file to attach (repeatable)")
	cmd.Flags().Var(mediaValue{kind: genchat.KindBlob, flags: m}, "file", "file to attach as a blob (repeatable)")
}

func (m *mediaFlags) parts() ([]genchat.Part, error) {
	parts := make([]genchat.Part, 0, len(m.items))
	for _, item := range m.items {
		var (
			part genchat.Part
			err  error
		)
		if item.kind == genchat.KindImage {
			part, err = genchat.ImageFromFile(item.path)
		} else {
			part, err = genchat.BlobFromFile(item.path)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", item.path, err)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func newSendCmd() *cobra.Command {
	var (
		media  mediaFlags
		stream bool
	)
	cmd := &cobra.Command{
		Use:   "send [text]",
		Short: "Generate a one-shot reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parts, err := media.parts()
			if err != nil {
				return err
			}
			session, release, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer release()
			send := session.Send
			if stream {
				send = session.SendStream
			}
			resp, err := send(ctx, strings.Join(args, " "), parts...)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp, stream)
		},
	}
	media.register(cmd)
	cmd.Flags().BoolVar(&stream, "stream", false, "print chunks as they arrive")
	return cmd
}

func newCountCmd() *cobra.Command {
	var media mediaFlags
	cmd := &cobra.Command{
		Use:   "count [text]",
		Short: "Count the tokens of a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parts, err := media.parts()
			if err != nil {
				return err
			}
			session, release, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer release()
			future, err := session.CountTokens(ctx, strings.Join(args, " "), parts...)
			if err != nil {
				return err
			}
			n, err := future.Get(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	media.register(cmd)
	return cmd
}

func newChatCmd() *cobra.Command {
	var (
		historyFile string
		stream      bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively; /tokens and /history inspect the conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, release, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer release()
			history, enc, err := loadHistory(historyFile)
			if err != nil {
				return err
			}
			started, err := session.StartChat(ctx, history)
			if err != nil {
				return err
			}
			if _, err := started.Get(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := chatLoop(ctx, session, cmd.InOrStdin(), out, stream); err != nil {
				return err
			}
			if enc == nil {
				return nil
			}
			return saveHistory(ctx, session, enc, historyFile)
		},
	}
	cmd.Flags().StringVar(&historyFile, "history", "", "history file to resume from and save to (.json, .yaml or .toml)")
	cmd.Flags().BoolVar(&stream, "stream", false, "print chunks as they arrive")
	return cmd
}

func chatLoop(ctx context.Context, session *genchat.Session, in io.Reader, out io.Writer, stream bool) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/tokens":
			future, err := session.CountChatTokens(ctx, "")
			if err != nil {
				return err
			}
			n, err := future.Get(ctx)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%d tokens\n", n)
			continue
		case "/history":
			future, err := session.ChatHistory(ctx)
			if err != nil {
				return err
			}
			h, err := future.Get(ctx)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			for _, t := range h.Turns() {
				fmt.Fprintf(out, "[%s] %s\n", t.Role, t.Text())
			}
			continue
		}
		send := session.SendChat
		if stream {
			send = session.SendChatStream
		}
		resp, err := send(ctx, line)
		if err != nil {
			return err
		}
		if err := printResponse(out, resp, stream); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func printResponse(out io.Writer, resp *genchat.Response, stream bool) error {
	var err error
	resp.Listen(genchat.Handler{
		OnPartial: func(chunk string) {
			fmt.Fprint(out, chunk)
		},
		OnFinal: func(text string) {
			if stream {
				fmt.Fprintln(out)
				return
			}
			fmt.Fprintln(out, text)
		},
		OnError: func(e error) {
			err = e
		},
	})
	return err
}

func loadHistory(filename string) (genchat.History, genchat.HistoryEncoder, error) {
	if filename == "" {
		return genchat.History{}, nil, nil
	}
	enc, err := encoding.ForFile(filename)
	if err != nil {
		return genchat.History{}, nil, err
	}
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return genchat.History{}, enc, nil
	}
	if err != nil {
		return genchat.History{}, nil, err
	}
	h, err := enc.Unmarshal(data)
	return h, enc, err
}

func saveHistory(ctx context.Context, session *genchat.Session, enc genchat.HistoryEncoder, filename string) error {
	future, err := session.ChatHistory(ctx)
	if err != nil {
		return err
	}
	h, err := future.Get(ctx)
	if err != nil {
		return err
	}
	data, err := enc.Marshal(h)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func newSchemaCmd() *cobra.Command {
	var (
		example string
		seed    uint64
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the history JSON schema, or an example history with --example",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if example == "" {
				bs, err := jsonenc.NewEncoder().Schema()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(bs))
				return nil
			}
			enc, err := encoding.ForFormat(example)
			if err != nil {
				return err
			}
			bs, err := encoding.Example(enc, gofakeit.New(seed), 2)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(bs))
			return nil
		},
	}
	cmd.Flags().StringVar(&example, "example", "", "print an example history in this format (json, yaml or toml)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for the example; 0 picks a random one")
	return cmd
}
