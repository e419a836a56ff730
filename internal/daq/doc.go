// Package daq renders the FHiCL documents that configure the processes of
// an artdaq data-acquisition run: board readers (toy simulator, TPC RCE,
// Penn board, SSP), event builders and aggregators, together with the
// waveform-viewer and trigger fragments they embed.
//
// Every document is produced by a Generator, which owns the template
// renderer, the base-template store and the random source for simulator
// seeds. A Plan describes a whole run; RenderPlan renders all of its
// documents concurrently and returns them in a stable order.
package daq
