// Command go-face is the thin command surface over the detection core:
// train the face detector, train the per-identity models, run an accuracy
// evaluation, or detect faces in a single image.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-face/detector"
	"github.com/nvr-ai/go-face/evaluation"
	"github.com/nvr-ai/go-face/hog"
	"github.com/nvr-ai/go-face/svm"
	"github.com/nvr-ai/go-face/trainers"
	"github.com/nvr-ai/go-face/util"
)

func main() {
	var (
		mode      string
		posDir    string
		negDir    string
		trainDir  string
		modelPath string
		modelsDir string
		imagePath string
		verbose   bool
	)

	flag.StringVar(&mode, "mode", "", "train-detector | train-identities | evaluate | detect")
	flag.StringVar(&posDir, "pos", "", "directory with positive (face) images")
	flag.StringVar(&negDir, "neg", "", "directory with negative (non-face) images")
	flag.StringVar(&trainDir, "identities", "", "directory with one subdirectory per identity")
	flag.StringVar(&modelPath, "model", "svm_model.bin", "detection model file")
	flag.StringVar(&modelsDir, "models", "models", "directory for per-identity model files")
	flag.StringVar(&imagePath, "image", "", "image to run detection on")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")
	flag.Parse()

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var err error
	switch mode {
	case "train-detector":
		err = runTrainDetector(posDir, negDir, modelPath)
	case "train-identities":
		err = runTrainIdentities(trainDir, modelsDir)
	case "evaluate":
		err = runEvaluate(posDir, negDir, modelPath)
	case "detect":
		err = runDetect(imagePath, modelPath)
	default:
		flag.Usage()
		logrus.Fatalf("unknown mode %q", mode)
	}
	if err != nil {
		logrus.Fatalf("%s failed: %v", mode, err)
	}
}

func runTrainDetector(posDir, negDir, modelPath string) error {
	trainer := trainers.NewDetectionTrainer(trainers.DetectionConfig{
		PositiveDir: posDir,
		NegativeDir: negDir,
		HOG:         hog.DefaultConfig(),
		SVM:         svm.DefaultTrainConfig(),
	})

	clf, report, err := trainer.Train()
	if err != nil {
		return err
	}
	if !report.Converged() {
		logrus.Warnf("training stopped early (%s) after %d iterations", report.Stop, report.Iterations)
	}

	return clf.SaveFile(modelPath)
}

func runTrainIdentities(trainDir, modelsDir string) error {
	trainer := trainers.NewIdentityTrainer(trainers.IdentityConfig{
		TrainDir: trainDir,
		HOG:      hog.DefaultConfig(),
		SVM:      svm.DefaultTrainConfig(),
		Progress: func(id, status string) {
			logrus.WithField("identity", id).Info(status)
		},
	})

	models, err := trainer.Train()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return err
	}
	for id, clf := range models {
		path := filepath.Join(modelsDir, id+".bin")
		if err := clf.SaveFile(path); err != nil {
			return err
		}
	}
	return nil
}

func runEvaluate(posDir, negDir, modelPath string) error {
	clf, err := svm.LoadFile(modelPath)
	if err != nil {
		return err
	}

	det, err := detector.New(detector.DefaultConfig(), hog.NewExtractor(hog.DefaultConfig()))
	if err != nil {
		return err
	}

	eval, err := evaluation.New(evaluation.Config{
		PositiveDir: posDir,
		NegativeDir: negDir,
	}, det, clf)
	if err != nil {
		return err
	}

	metrics, err := eval.Run()
	if err != nil {
		return err
	}

	fmt.Printf("TP=%d FP=%d TN=%d FN=%d\n",
		metrics.TruePositives, metrics.FalsePositives,
		metrics.TrueNegatives, metrics.FalseNegatives)
	fmt.Printf("accuracy=%.2f%% precision=%.2f%% recall=%.2f%% f1=%.2f%%\n",
		metrics.Accuracy()*100, metrics.Precision()*100,
		metrics.Recall()*100, metrics.F1()*100)
	return nil
}

func runDetect(imagePath, modelPath string) error {
	clf, err := svm.LoadFile(modelPath)
	if err != nil {
		return err
	}

	img, err := util.LoadImage(imagePath)
	if err != nil {
		return err
	}

	det, err := detector.New(detector.DefaultConfig(), hog.NewExtractor(hog.DefaultConfig()))
	if err != nil {
		return err
	}

	regions := det.Detect(img, clf)
	if len(regions) == 0 {
		fmt.Println("no faces detected")
		return nil
	}
	for _, r := range regions {
		fmt.Println(r)
	}
	return nil
}
