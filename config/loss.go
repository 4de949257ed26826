package config

import "math"

// Compute evaluates the configured aggregate loss between pred and y,
// mirroring xcsf/loss.c's loss_mse/loss_rmse: mean squared error across
// the k output dimensions, square-rooted for LossRMSE. The default branch
// serves LossMSE; Validate has already rejected any other LossFunc value,
// and a Config built without going through Validate also gets MSE there.
func (c Config) Compute(pred, y []float64) float64 {
	sum := 0.0
	n := len(y)
	for i := 0; i < n; i++ {
		d := y[i] - pred[i]
		sum += d * d
	}
	mse := sum / float64(n)

	switch c.LossFunc {
	case LossRMSE:
		return math.Sqrt(mse)
	default:
		return mse
	}
}
