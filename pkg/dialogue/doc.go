/*
Package dialogue implements the rule-matching dialogue state dispatcher.

A Manager holds named rules, each an immutable predicate over an incoming
context (domain, intent, recognized entities) plus a derived specificity
score. On dispatch the manager scans the rules in ascending specificity
order, selects the first match, and invokes the handler bound to that state
with a fresh slots map and a fresh Responder. The handler accumulates client
actions on the responder; the manager returns the selected state name and
the ordered actions.

Registration happens during startup; call Seal before serving so the rule
set is frozen while dispatch calls are in flight.
*/
package dialogue
