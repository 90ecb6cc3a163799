/*
Package parley selects, for an incoming conversational request, the single
best-matching handler among a registered set of rules, and gives that handler
a structured way to emit an ordered sequence of client-facing actions.

Each rule filters on the request's domain, intent, and recognized entities,
and carries a derived specificity score. Dispatch scans the rules in
ascending specificity order and the first match wins. Evaluation is stateless
given one context and one rule set; cross-turn memory, context construction,
and transport all belong to the host.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/parley"
	)

	func greet(ctx parley.Context, slots parley.Slots, r *parley.Responder) {
		slots["name"] = "friend"
		r.Reply("Hi {name}!", "Hello {name}!")
	}

	func main() {
		m := parley.New()
		if err := m.Register("greet", greet, parley.RuleSpec{Domain: "smalltalk"}); err != nil {
			log.Fatal(err)
		}
		m.Seal()

		result, err := m.Dispatch(parley.Context{Domain: "smalltalk", Intent: "greeting"})
		if err != nil {
			log.Fatal(err)
		}
		for _, action := range result.ClientActions {
			fmt.Println(action.Name, action.Payload)
		}
	}
*/
package parley
