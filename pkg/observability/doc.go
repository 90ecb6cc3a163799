/*
Package observability provides monitoring hooks for the dialogue manager.

It ships a Prometheus-backed dispatch observer recording selected states,
outcomes, and handler latency. Wiring it is optional; the manager works
without any observer attached.
*/
package observability
