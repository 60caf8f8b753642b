// Package fiber implements the rendering engine: a cooperative,
// interruptible work loop that reconciles element trees into a fiber tree,
// commits the resulting effects to a host adapter in one uninterrupted pass,
// and maintains per-component hook state across renders.
//
// The engine is single-threaded by contract. Render, state setters, and the
// scheduler callbacks must all run on the same goroutine; pair the engine
// with idle.Loop and its Dispatch method when events arrive from elsewhere.
package fiber
