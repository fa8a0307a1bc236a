// Package fileutil holds filesystem helpers shared by the durable stores.
package fileutil
