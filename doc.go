// Package ibl computes laminar and turbulent boundary layer development over
// a prescribed edge velocity profile using integral boundary layer methods.
//
// Two families of methods are provided: Thwaites' one equation laminar method
// (ThwaitesLinear, ThwaitesNonlinear) and Head's two equation turbulent method
// (HeadMethod). Each integrates its governing ODE along the streamwise
// coordinate with an adaptive stepper, stops early when a separation or user
// supplied termination event fires, and then answers queries for momentum
// thickness, displacement thickness, shape factors, wall shear stress and
// transpiration velocity over the solved range.
package ibl
