package main

import (
	"encoding/json"
	"fmt"

	"github.com/arthur-debert/dirstore/dirstore"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or validate a database",
	Long:  "Creates the database root directory if it does not exist, or validates an existing one, and prints its metadata.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return render(db.Metadata())
	},
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage collections",
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		path, err := db.NewCollection(args[0])
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var collectionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return render(db.ListCollections())
	},
}

var collectionsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a collection and all its documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return db.DeleteCollection(args[0])
	},
}

var putCmd = &cobra.Command{
	Use:   "put <collection> <json>",
	Short: "Store a document",
	Long:  "Stores a JSON document. The _id field, when present, names the file; otherwise a fresh id is generated.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := parseDocument(args[1])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return db.Create(args[0], doc)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <collection> <query-json>",
	Short: "Find the first document matching a query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := parseDocument(args[1])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		doc, ok, err := db.Find(args[0], query)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no document matches %s", args[1])
		}
		return render(doc)
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <collection> [query-json]",
	Short: "List documents, optionally filtered by a query",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var query dirstore.Document
		if len(args) == 2 {
			q, err := parseDocument(args[1])
			if err != nil {
				return err
			}
			query = q
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		docs, err := db.FindAll(args[0], query)
		if err != nil {
			return err
		}
		return render(docs)
	},
}

var setCmd = &cobra.Command{
	Use:   "set <collection> <json>",
	Short: "Merge fields into an existing document",
	Long:  "Merges the given fields into the document named by _id (required) and prints the result.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := parseDocument(args[1])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		merged, err := db.Update(args[0], doc)
		if err != nil {
			return err
		}
		return render(merged)
	},
}

var deleteAll bool

var rmCmd = &cobra.Command{
	Use:   "rm <collection> <query-json>",
	Short: "Delete the first document matching a query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := parseDocument(args[1])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if deleteAll {
			return db.DeleteAll(args[0], query)
		}
		return db.Delete(args[0], query)
	},
}

func init() {
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsLsCmd)
	collectionsCmd.AddCommand(collectionsRmCmd)

	rmCmd.Flags().BoolVar(&deleteAll, "all", false, "delete every matching document, not just the first")
}

func parseDocument(arg string) (dirstore.Document, error) {
	var doc dirstore.Document
	if err := json.Unmarshal([]byte(arg), &doc); err != nil {
		return nil, fmt.Errorf("invalid document JSON: %w", err)
	}
	return doc, nil
}
