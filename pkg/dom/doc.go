// Package dom is the in-memory document hyper apps render into.
//
// A Document owns element and text nodes addressed by HID. Document.Patch
// diffs two VNode trees and applies the result, so the document always
// mirrors the last rendered view:
//
//   - class and style live in dedicated fields and are serialized as the
//     computed "class" and "style" attributes
//   - value, checked and selected are live properties, not attributes
//   - each on<event> prop occupies one listener slot per event name, rebound
//     on every render
//
// Events dispatched with DispatchEvent (or Node.Click / Node.Input) bubble
// from the target to the root.
//
// All methods are safe for concurrent use.
package dom
