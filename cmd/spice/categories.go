package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-spice-must-sync/internal/cli"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add, update and delete categories. Types and colors are inherited from the nearest ancestor that sets them.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(treeCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(ensureBaseCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				categories, err := a.sync.SyncCategories(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to sync categories: %w", err)
				}

				if len(categories) == 0 {
					fmt.Println(cli.InfoStyle.Render("No categories found. Use 'spice categories ensure-base' to create the base categories."))
					return nil
				}

				table := cli.NewTable("ID", "Title", "Type", "Color", "Parent")
				for _, c := range categories {
					table.AddRow(c.ID, c.Title, c.Type.String(), cli.FormatSwatch(c.Color)+" "+c.Color, c.ParentCategoryID)
				}
				fmt.Print(table.String())
				return nil
			})
		},
	}
}

func treeCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the category hierarchy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				typed, err := a.sync.SyncCategories(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to sync categories: %w", err)
				}

				categories := make([]model.Category, 0, len(typed))
				for _, c := range typed {
					categories = append(categories, c.Category)
				}

				fmt.Println(cli.FormatTitle("Categories"))
				for _, root := range model.BuildCategoryTree(categories) {
					printNode(root, 0)
				}
				return nil
			})
		},
	}
}

func printNode(node *model.CategoryNode, depth int) {
	fmt.Printf("%s%s %s\n", strings.Repeat("  ", depth), node.Title, cli.SubtleStyle.Render("("+node.ID+")"))
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		parent       string
		color        string
		icon         string
		categoryType string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseCategoryType(categoryType)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.sync.CreateCategory(cmd.Context(), model.Category{
					Title:            args[0],
					ParentCategoryID: parent,
					Color:            color,
					Icon:             icon,
					Type:             t,
					Active:           true,
				})
				if err != nil {
					return fmt.Errorf("failed to create category: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %q (%s)", created.Title, created.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", model.ExpensesCategoryID, "parent category ID")
	cmd.Flags().StringVar(&color, "color", "", "display color, inherited from the parent when empty")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&categoryType, "type", "", "category type (expense, income, investment), inherited when empty")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		title        string
		parent       string
		color        string
		categoryType string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				existing, err := a.collections().GetCategory(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if existing == nil {
					return fmt.Errorf("category %q not found", args[0])
				}

				updated := *existing
				if cmd.Flags().Changed("title") {
					updated.Title = title
				}
				if cmd.Flags().Changed("parent") {
					updated.ParentCategoryID = parent
				}
				if cmd.Flags().Changed("color") {
					updated.Color = color
				}
				if cmd.Flags().Changed("type") {
					if updated.Type, err = parseCategoryType(categoryType); err != nil {
						return err
					}
				}

				if _, err := a.sync.UpdateCategory(cmd.Context(), updated); err != nil {
					return fmt.Errorf("failed to update category: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category %s", args[0])))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&parent, "parent", "", "new parent category ID")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	cmd.Flags().StringVar(&categoryType, "type", "", "new type (expense, income, investment)")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.sync.DeleteCategory(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete category: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category %s", args[0])))
				return nil
			})
		},
	}
}

func ensureBaseCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-base",
		Short: "Create the Expenses, Incomes and Investments roots if missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.sync.EnsureBaseCategories(cmd.Context()); err != nil {
					return fmt.Errorf("failed to create base categories: %w", err)
				}

				fmt.Println(cli.FormatSuccess("Base categories are in place"))
				return nil
			})
		},
	}
}
