// Package elements provides the built-in element types: item, a plain
// container; timer, which calls its on-timeout method on an interval; and
// text, which measures its content with a bitmap face and publishes the
// result as width and height.
//
// Types that draw pixels belong to a rendering backend and are not part of
// this package.
package elements
