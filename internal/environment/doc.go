// Package environment holds the deployment-specific settings a front-end
// application reads at startup: the backend API base URL, the identity
// provider parameters and the production flag.
//
// A Holder is built once and only hands out copies of its value.
package environment
