package synth

// Default generator constants.
const (
	DefaultSampleRate = 256.0
	DefaultSamples    = 384
	DefaultWorkers    = 4
	DefaultSeed       = 42

	alphaHz   = 10.0
	thetaHz   = 6.0
	betaHz    = 20.0
	spikeHz   = 3.0
	alphaAmp  = 20.0
	thetaAmp  = 10.0
	betaAmp   = 5.0
	spikeAmp  = 120.0
	noiseStd  = 4.0
	burstFrac = 0.5

	// StatusOK is the expected status for a successful screening.
	StatusOK = 200
	// PercentageMultiplier converts ratios to percentages.
	PercentageMultiplier = 100
)
