// Package envserver serves the public environment to front-end builds and
// browsers.
//
// Routes:
//   - /environment.json: the environment as JSON
//   - /environment.js: an ES module exporting `environment`
//   - /healthz: liveness
package envserver
