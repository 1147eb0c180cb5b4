/*
Package formflow is a multi-step form engine with a branching logic
graph. Forms are ordered sections of typed fields; a graph of condition,
operator, and action nodes decides where a respondent goes after each
section, and a deterministic traversal engine simulates the walk.

It separates the form definition (sections and graph) from the run state
(answers and position) and from the surfaces that drive it. The engine
core is pure; storage, HTTP, MCP, and terminal rendering are adapters.
This lets FormFlow embed anywhere: a library call, a CLI simulator, a
JSON API, or an AI agent toolchain.

# Key Features

  - Deterministic traversal: the same flow and answers always resolve to
    the same next section or terminal outcome.
  - Editor document codec: flows round-trip through the node/edge JSON
    format the visual builder produces.
  - Session persistence: previews survive process restarts via file or
    redis stores, with optional distributed locking.
  - Graph exports: Mermaid and Graphviz DOT renderings of the logic
    graph, with traversal overlays.

# Usage

Initialize the App, store a flow, and walk it:

	package main

	import (
		"context"
		"log"

		"github.com/formflow-go/formflow"
		"github.com/formflow-go/formflow/pkg/builder"
	)

	func main() {
		app, err := formflow.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		if err := app.SaveFlow(ctx, "onboarding", builder.Template()); err != nil {
			log.Fatal(err)
		}

		sess, err := app.Open(ctx, "onboarding")
		if err != nil {
			log.Fatal(err)
		}

		// Main loop: show section, collect answers, advance.
		for !sess.IsTerminal() {
			section, _ := sess.CurrentSection()
			log.Println("Section:", section.Title)

			// In a real app, answers come from the respondent.
			sess.Advance(ctx)
		}

		log.Println(sess.Outcome().String())
	}
*/
package formflow
