// Package deps resolves the external executables feebump shells out to.
package deps
