package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"bookstore/internal/book"
)

type opener func(ctx context.Context, configPath string) (book.Repository, func(), error)

func newApp(open opener, out io.Writer) *cli.App {
	var (
		svc     *book.Service
		closeFn func()
	)
	service := func(c *cli.Context) (*book.Service, error) {
		if svc != nil {
			return svc, nil
		}
		repo, closer, err := open(c.Context, c.String("config"))
		if err != nil {
			return nil, err
		}
		svc, closeFn = book.NewService(repo), closer
		return svc, nil
	}

	return &cli.App{
		Name:   "bookctl",
		Usage:  "add, list and remove books in the catalog",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML configuration file",
				EnvVars: []string{"BOOKSTORE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "add a book",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}},
					&cli.StringFlag{Name: "author", Aliases: []string{"a"}},
					&cli.StringFlag{Name: "isbn", Aliases: []string{"i"}},
				},
				Action: func(c *cli.Context) error {
					in := book.Book{Title: c.String("title"), Author: c.String("author"), ISBN: c.String("isbn")}
					if err := book.Validate(in); err != nil {
						return err
					}
					s, err := service(c)
					if err != nil {
						return err
					}
					created, err := s.Create(c.Context, in)
					if err != nil {
						return fmt.Errorf("inserting book: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "Book: %q, %q, %q, successfully entered\n", created.Title, created.Author, created.ISBN)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list every book",
				Action: func(c *cli.Context) error {
					s, err := service(c)
					if err != nil {
						return err
					}
					books, err := s.List(c.Context)
					if err != nil {
						return fmt.Errorf("reading books: %w", err)
					}
					printBooks(c.App.Writer, books)
					return nil
				},
			},
			{
				Name:  "remove",
				Usage: "remove books by title or by isbn",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}},
					&cli.StringFlag{Name: "isbn", Aliases: []string{"i"}},
				},
				Action: func(c *cli.Context) error {
					sel := book.Selector{Title: c.String("title"), ISBN: c.String("isbn")}
					switch {
					case sel.Title == "" && sel.ISBN == "":
						return book.ErrSelectorMissing
					case sel.Title != "" && sel.ISBN != "":
						return book.ErrSelectorAmbiguous
					}
					s, err := service(c)
					if err != nil {
						return err
					}
					if err := s.Remove(c.Context, sel); err != nil {
						return fmt.Errorf("removing book: %w", err)
					}
					fmt.Fprintln(c.App.Writer, "Book removed successfully!")
					return nil
				},
			},
		},
		After: func(c *cli.Context) error {
			if closeFn != nil {
				closeFn()
			}
			return nil
		},
	}
}

func printBooks(w io.Writer, books []book.Book) {
	fmt.Fprintln(w, "All Books:")
	for i, b := range books {
		fmt.Fprintf(w, "Book %d: %s\n", i+1, b.Title)
		fmt.Fprintf(w, "Author: %s\n", b.Author)
		fmt.Fprintf(w, "ISBN: %s\n", b.ISBN)
		fmt.Fprintln(w)
	}
}
