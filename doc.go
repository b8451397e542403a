// Package simforth has no exported API of its own; its functionality lives
// under cell, stack, token, dict, streams, tokenizer, primitive, interp, and
// concurrent, with a minimal embedder at cmd/simforth. See interp for the
// main entry point: interp.New followed by Boot and EvalString/EvalFile.
package simforth
