package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parley-dm/parley/internal/ontology"
)

// domainCmd inspects domain description files.
var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Inspect the domain description",
	RunE:  runDomainShow,
}

var domainValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that a domain description file is well formed",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDomainValidate,
}

var domainShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the predicates, sorts and plans of the domain",
	RunE:  runDomainShow,
}

func runDomainValidate(cmd *cobra.Command, args []string) error {
	path := resolveDomainPath()
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := ontology.Load(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Printf("%s: ok\n", path)
	return nil
}

func runDomainShow(cmd *cobra.Command, args []string) error {
	dom, err := ontology.Load(resolveDomainPath())
	if err != nil {
		return fmt.Errorf("load domain: %w", err)
	}

	fmt.Println("Predicates:")
	for _, p := range dom.Predicates() {
		line := fmt.Sprintf("  %s (sort %s)", p.Name, p.Sort)
		if len(p.Aliases) > 0 {
			line += " aliases: " + strings.Join(p.Aliases, ", ")
		}
		fmt.Println(line)
	}

	fmt.Println("Plans:")
	for _, name := range dom.PlanNames() {
		fmt.Printf("  %s\n", name)
		if plan, ok := dom.PlanFor(name); ok {
			for _, step := range plan.Subplans {
				fmt.Printf("    %s %s\n", step.Type, step.Goal())
			}
		}
	}
	return nil
}

func init() {
	domainCmd.AddCommand(domainValidateCmd)
	domainCmd.AddCommand(domainShowCmd)
}
